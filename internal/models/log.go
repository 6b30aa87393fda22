package models

import "time"

// Log is the record written by the async DB log writer.
type Log struct {
	AppId        string    `json:"app_id" bson:"app_id"`
	Message      string    `json:"message" bson:"message"`
	MerchantId   string    `json:"merchant_id,omitempty" bson:"merchant_id,omitempty"`
	Caller       string    `json:"caller,omitempty" bson:"caller,omitempty"`
	LogLevelId   int       `json:"log_level_id" bson:"log_level_id"`
	CreatedOnUtc time.Time `json:"created_on_utc" bson:"created_on_utc"`
}
