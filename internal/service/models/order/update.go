package order

import (
	"encoding/json"
	"slices"

	"github.com/corray333/littlelemon/internal/service/svcerr"
)

// ParseUpdate turns a partial update document into an Update. Every key of the
// document is recorded, so fields nobody may change still reach the access policy.
func ParseUpdate(doc map[string]json.RawMessage) (Update, error) {
	u := Update{}
	for key := range doc {
		u.Fields = append(u.Fields, Field(key))
	}
	slices.Sort(u.Fields)

	if raw, ok := doc[string(FieldDeliveryAgent)]; ok {
		if err := json.Unmarshal(raw, &u.DeliveryAgentID); err != nil {
			return Update{}, invalidField(FieldDeliveryAgent, "must be a user id or null")
		}
	}

	if raw, ok := doc[string(FieldStatus)]; ok {
		var status *int
		if err := json.Unmarshal(raw, &status); err != nil || status == nil {
			return Update{}, invalidField(FieldStatus, "must be a status code")
		}
		u.Status = Status(*status)
	}

	return u, nil
}

func invalidField(f Field, reason string) error {
	return svcerr.Validation("invalid %s", f).
		WithFields(map[string]string{string(f): reason})
}
