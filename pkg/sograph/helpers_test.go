package sograph

import (
	"encoding/json"
	"strings"
)

func decodeInto(body string, out any) error {
	return json.NewDecoder(strings.NewReader(body)).Decode(out)
}
