package registry

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type rawRecords = map[string]json.RawMessage

func emptyRecords() rawRecords {
	return rawRecords{}
}

// decodeRecords decodes each entry on its own so that one malformed record
// is dropped without discarding the rest of the document.
func decodeRecords[T any](raw rawRecords, validate func(key string, rec *T) error, logger *zap.Logger, document string) (map[string]T, int) {
	out := make(map[string]T, len(raw))
	dropped := 0
	for key, data := range raw {
		var rec T
		err := json.Unmarshal(data, &rec)
		if err == nil && validate != nil {
			err = validate(key, &rec)
		}
		if err != nil {
			dropped++
			logger.Warn("Dropped malformed record",
				zap.String("document", document),
				zap.String("membership_id", key),
				zap.Error(err),
			)
			continue
		}
		out[key] = rec
	}
	return out, dropped
}

func encodeRecords[T any](records map[string]T) (rawRecords, error) {
	raw := make(rawRecords, len(records))
	for key, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record %s: %w", key, err)
		}
		raw[key] = data
	}
	return raw, nil
}
