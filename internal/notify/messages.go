package notify

import (
	"encoding/json"
	"time"
)

// UpdateCompletedMessage announces that a monthly sheet was rewritten.
type UpdateCompletedMessage struct {
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	Transactions int       `json:"transactions"`
	AsOf         string    `json:"as_of"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m UpdateCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func UpdateCompletedFromJSON(data []byte) (UpdateCompletedMessage, error) {
	var m UpdateCompletedMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
