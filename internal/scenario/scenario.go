package scenario

import "context"

// Splits an instance can belong to.
const (
	TrainSplit = "train"
	ValidSplit = "valid"
	TestSplit  = "test"
)

// CorrectTag marks the reference that counts as the right answer.
const CorrectTag = "correct"

type Input struct {
	Text string
}

type Output struct {
	Text string
}

// Reference is one possible answer to an instance, tagged when correct.
type Reference struct {
	Output Output
	Tags   []string
}

func (r Reference) IsCorrect() bool {
	for _, tag := range r.Tags {
		if tag == CorrectTag {
			return true
		}
	}
	return false
}

// Instance is the uniform unit scenarios produce: an input plus its
// references, assigned to a split.
type Instance struct {
	ID         string
	Input      Input
	References []Reference
	Split      string
}

// CorrectReference returns the first correct reference, if any.
func (i Instance) CorrectReference() (Reference, bool) {
	for _, ref := range i.References {
		if ref.IsCorrect() {
			return ref, true
		}
	}
	return Reference{}, false
}

// Scenario converts a raw dataset into uniform instances.
type Scenario interface {
	Name() string
	Description() string
	Tags() []string
	Instances(ctx context.Context) ([]Instance, error)
}
