package models

import "time"

// TurnRecord is the durable audit entry for one processed dialogue turn.
type TurnRecord struct {
	ID        string       `bson:"id" json:"id"`
	SessionID string       `bson:"sessionId" json:"sessionId"`
	UserID    string       `bson:"userId" json:"userId"`
	UserInput string       `bson:"userInput" json:"userInput"`
	Reply     string       `bson:"reply" json:"reply"`
	Intent    string       `bson:"intent" json:"intent"`
	FromState SessionState `bson:"fromState" json:"fromState"`
	ToState   SessionState `bson:"toState" json:"toState"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
}
