// Package seed bulk imports go-i18n message files into the
// authoritative translation store.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"

	"github.com/pitabwire/lugha"
)

// Importer pushes message files through the manager write path, so every
// imported value evicts and invalidates its cache slot like any other
// write. Re-importing the same files is idempotent.
type Importer struct {
	manager *lugha.Manager
}

// NewImporter creates an importer writing through the supplied manager.
func NewImporter(manager *lugha.Manager) *Importer {
	return &Importer{manager: manager}
}

// ImportDir imports every messages.<culture>.toml file in dir under the
// given resource and returns the number of translations written.
func (imp *Importer) ImportDir(ctx context.Context, resource, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "messages.*.toml"))
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range paths {
		count, importErr := imp.ImportFile(ctx, resource, path)
		total += count
		if importErr != nil {
			return total, importErr
		}
	}

	return total, nil
}

// ImportFile imports one message file; its culture comes from the
// language tag embedded in the file name, with the undetermined tag
// mapping to the invariant culture.
func (imp *Importer) ImportFile(ctx context.Context, resource, path string) (int, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading message file %q: %w", path, err)
	}

	messageFile, err := i18n.ParseMessageFileBytes(buf, path, map[string]i18n.UnmarshalFunc{
		"toml": toml.Unmarshal,
	})
	if err != nil {
		return 0, fmt.Errorf("parsing message file %q: %w", path, err)
	}

	culture := messageFile.Tag.String()
	if culture == "und" {
		culture = lugha.InvariantCulture
	}

	count := 0
	for _, message := range messageFile.Messages {
		value := message.Other
		if value == "" {
			value = message.One
		}
		if value == "" {
			util.Log(ctx).WithField("messageID", message.ID).WithField("path", path).
				Debug("skipping message without a value")
			continue
		}

		upsertErr := imp.manager.Upsert(ctx, &lugha.Translation{
			Resource: resource,
			Key:      message.ID,
			Culture:  culture,
			Value:    value,
		})
		if upsertErr != nil {
			return count, upsertErr
		}
		count++
	}

	return count, nil
}
