package common

// Permission is one consent rule of a patient's record: which resource class
// it covers and the access decision code.
type Permission struct {
	Code     string `json:"code" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}
