package blocks

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type blockEnvelope struct {
	ID    string          `json:"id"`
	Type  Type            `json:"type"`
	Order int             `json:"order"`
	Data  json.RawMessage `json:"data"`
}

// ErrUnknownType is wrapped by UnmarshalJSON when the type tag is not a
// known variant.
var ErrUnknownType = fmt.Errorf("unknown block type")

// UnmarshalJSON decodes a block, selecting the payload variant by type tag.
func (b *Block) UnmarshalJSON(raw []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	data := defaultData(env.Type)
	if data == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("block %s: decode %s payload: %w", env.ID, env.Type, err)
		}
	}
	if ld, ok := data.(*ListData); ok && len(ld.Items) == 0 {
		ld.Items = []string{""}
	}
	b.ID = env.ID
	b.Type = env.Type
	b.Order = env.Order
	b.Data = data
	return nil
}

// MarshalSequence serializes a block sequence for the article content column.
func MarshalSequence(seq []*Block) (string, error) {
	if seq == nil {
		seq = []*Block{}
	}
	raw, err := json.Marshal(seq)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParseSequence decodes the serialized content column back into blocks.
// A malformed document degrades to an empty sequence; a block with an
// unknown type tag is logged and skipped rather than aborting the load.
func ParseSequence(content string, logger *zap.Logger) []*Block {
	if content == "" {
		return []*Block{}
	}

	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(content), &raws); err != nil {
		if logger != nil {
			logger.Warn("article content is not a block array, treating as empty",
				zap.Error(err))
		}
		return []*Block{}
	}

	seq := make([]*Block, 0, len(raws))
	for i, raw := range raws {
		var b Block
		if err := json.Unmarshal(raw, &b); err != nil {
			if logger != nil {
				logger.Warn("skipping undecodable block",
					zap.Int("index", i), zap.Error(err))
			}
			continue
		}
		seq = append(seq, &b)
	}
	return seq
}
