package scenario

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const defaultDataDir = "data/scenarios"

func dataPath(name, language string) string {
	dir := strings.TrimSpace(os.Getenv("POLYBENCH_DATA_DIR"))
	if dir == "" {
		dir = defaultDataDir
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.jsonl", name, language))
}

func readJSONL[T any](ctx context.Context, path string) ([]T, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("scenario: empty jsonl path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeJSONLStream[T](ctx, f)
}

func decodeJSONLStream[T any](ctx context.Context, r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var out []T
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return out, fmt.Errorf("scenario: parse jsonl: %w", err)
		}
		out = append(out, item)
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeSplit(split string) string {
	switch strings.ToLower(strings.TrimSpace(split)) {
	case "train":
		return TrainSplit
	case "val", "valid", "validation":
		return ValidSplit
	case "", "test":
		return TestSplit
	default:
		return TestSplit
	}
}
