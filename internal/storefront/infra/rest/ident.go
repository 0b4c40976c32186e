package rest

import (
	"encoding/json"
	"fmt"
)

// ident decodes an opaque identifier that the API may send as either a
// JSON string or a number. Missing and null both decode to the empty
// string, which the domain treats as absence.
type ident string

func (id *ident) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ident(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier is neither string nor number: %s", data)
	}
	*id = ident(n.String())
	return nil
}
