package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/ytget/rollcall/internal/model"
	"github.com/ytget/rollcall/internal/platform"
)

// ErrNoDocument is returned when the name list file does not exist
var ErrNoDocument = errors.New("name list file not found")

// readRetry rides over editors that truncate before writing
var readRetry = retry.Config{
	MaxAttempts:   3,
	InitialDelay:  10 * time.Millisecond,
	BackoffPolicy: retry.BackoffExponential,
}

// ReadDocument reads and normalizes a name list document
func ReadDocument(ctx context.Context, path string) (*model.RosterDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDocument, path)
		}
		return nil, fmt.Errorf("stat name list: %w", err)
	}

	retryer := retry.New[*model.RosterDocument](readRetry)
	return retryer.Do(ctx, func(ctx context.Context) (*model.RosterDocument, error) {
		// #nosec G304 -- path is chosen by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read name list: %w", err)
		}
		var doc model.RosterDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode name list: %w", err)
		}
		doc.Normalize()
		return &doc, nil
	})
}

// WriteDocument writes doc as indented UTF-8 JSON
func WriteDocument(path string, doc *model.RosterDocument) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode name list: %w", err)
	}
	if err := platform.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write name list: %w", err)
	}
	return nil
}
