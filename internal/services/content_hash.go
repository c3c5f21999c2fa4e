package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// contentHash is the deterministic digest that keys every recompute-skip in
// this package. Inputs are trimmed and joined with a separator that cannot
// occur inside caption text boundaries ambiguously.
func contentHash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{'\n', 0x1f, '\n'})
		}
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// profileText concatenates a user's bio and recent captions into the single
// document that both the user embedding and the interest profile derive from.
func profileText(bio string, recentCaptions []string) string {
	var b strings.Builder
	bio = strings.TrimSpace(bio)
	if bio != "" {
		b.WriteString("Bio: ")
		b.WriteString(bio)
	}
	for _, c := range recentCaptions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Caption: ")
		b.WriteString(c)
	}
	return b.String()
}

func encodeVector(vec []float32) (datatypes.JSON, error) {
	raw, err := json.Marshal(vec)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeVector(raw datatypes.JSON) []float32 {
	if len(raw) == 0 {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil
	}
	return vec
}
