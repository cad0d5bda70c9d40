package client

import "strings"

type Registry struct {
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]Client),
	}
}

func (r *Registry) Register(c Client) {
	if r == nil || c == nil {
		return
	}
	name := strings.ToLower(strings.TrimSpace(c.Name()))
	if name == "" {
		return
	}
	if r.clients == nil {
		r.clients = make(map[string]Client)
	}
	r.clients[name] = c
}

func (r *Registry) Get(name string) (Client, bool) {
	if r == nil || r.clients == nil {
		return nil, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false
	}
	c, ok := r.clients[name]
	return c, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.clients))
	for name := range r.clients {
		out = append(out, name)
	}
	return out
}
