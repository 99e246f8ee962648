package sharecode

import (
	"errors"

	hashids "github.com/speps/go-hashids/v2"
)

// Codec turns numeric cart IDs into short opaque codes for share links
// (ppang.app/c/xxxxxx) and back. Same salt must be used on every instance
// or existing links break.
type Codec struct {
	h *hashids.HashID
}

func New(salt string, minLength int) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	return c.h.EncodeInt64([]int64{id})
}

func (c *Codec) Decode(code string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, errors.New("malformed share code")
	}
	return ids[0], nil
}
