// Package checklist turns the scoring subtree of an IFS NEO export into
// requirement records, joining each entry against the published requirement
// id table.
package checklist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/M00N69/NEOREVIEW/pkg/reftable"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

// ErrChecklistMissing reports a document that carries no checklist subtree.
// The profile side of such a document is still usable.
var ErrChecklistMissing = errors.New("checklist subtree not found")

// scoringsPath locates the checklist scorings inside the export.
var scoringsPath = []string{"data", "modules", "food_8", "checklists", "checklistFood8", "resultScorings"}

// scoringEntry is the wire shape of one scoring. Pointer fields tell a
// missing key apart from an empty string.
type scoringEntry struct {
	Answers struct {
		EnglishExplanationText *string         `json:"englishExplanationText"`
		ExplanationText        *string         `json:"explanationText"`
		FieldAnswers           json.RawMessage `json:"fieldAnswers"`
	} `json:"answers"`
	Score struct {
		Label *string `json:"label"`
	} `json:"score"`
}

// Resolve walks the checklist scorings in document order and produces one
// requirement record per entry. The document decides which requirements
// exist and in what order; the id table only decorates them. A UUID the
// table does not know, or a nil table, falls back to the raw UUID as the
// display number. Resolve never reorders and never drops entries.
func Resolve(doc []byte, table *reftable.Table, logger *zap.Logger) ([]schema.RequirementRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	if err := descendTo(dec, scoringsPath); err != nil {
		if errors.Is(err, errPathMissing) {
			return nil, ErrChecklistMissing
		}
		return nil, fmt.Errorf("checklist: %w", err)
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("checklist: read scorings: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// null or a non-object where the scorings map belongs
		return nil, ErrChecklistMissing
	}

	records := make([]schema.RequirementRecord, 0, 64)
	matched := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("checklist: read scoring key: %w", err)
		}
		uuid, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("checklist: unexpected scoring key %v", keyTok)
		}

		var entry scoringEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("checklist: decode scoring %s: %w", uuid, err)
		}

		rec, hit := buildRecord(uuid, entry, table)
		if hit {
			matched++
		}
		records = append(records, rec)
	}

	logger.Info("checklist resolved",
		zap.Int("entries", len(records)),
		zap.Int("numbered", matched),
		zap.Int("rawIds", len(records)-matched))
	return records, nil
}

// errPathMissing distinguishes an absent subtree from malformed JSON.
var errPathMissing = errors.New("path element missing")

// descendTo advances the decoder through nested objects until it sits just
// before the value of the last path element. Sibling values along the way
// are skipped without being materialized.
func descendTo(dec *json.Decoder, path []string) error {
	for _, want := range path {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("descend to %q: %w", want, err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return errPathMissing
		}

		found := false
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("descend to %q: %w", want, err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("descend to %q: unexpected token %v", want, keyTok)
			}
			if key == want {
				found = true
				break
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("skip %q: %w", key, err)
			}
		}
		if !found {
			// a well-formed object ends in its closing brace; anything else
			// means the document could not be read, not that the key is gone
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("descend to %q: %w", want, err)
			}
			return errPathMissing
		}
	}
	return nil
}

// buildRecord joins one scoring entry against the id table. Everything the
// entry does not carry gets the NotAvailable sentinel; a null fieldAnswers
// renders empty, matching how a null cell exports.
func buildRecord(uuid string, entry scoringEntry, table *reftable.Table) (schema.RequirementRecord, bool) {
	rec := schema.RequirementRecord{
		UUID:                uuid,
		Num:                 uuid,
		Chapter:             schema.NotAvailable,
		Theme:               schema.NotAvailable,
		SubTheme:            schema.NotAvailable,
		Explanation:         textOrNA(entry.Answers.EnglishExplanationText),
		DetailedExplanation: textOrNA(entry.Answers.ExplanationText),
		Score:               textOrNA(entry.Score.Label),
		Response:            renderAnswers(entry.Answers.FieldAnswers),
	}
	row, ok := table.ByUUID(uuid)
	if ok {
		rec.Num = row.Num
		rec.Chapter = row.Chapter
		rec.Theme = row.Theme
		rec.SubTheme = row.SubTheme
	}
	return rec, ok
}

func textOrNA(s *string) string {
	if s == nil {
		return schema.NotAvailable
	}
	return *s
}

// renderAnswers flattens the free-form fieldAnswers value to a single cell
// string. Strings pass through unquoted; composite values keep their JSON
// shape, compacted.
func renderAnswers(raw json.RawMessage) string {
	if len(raw) == 0 {
		return schema.NotAvailable
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
