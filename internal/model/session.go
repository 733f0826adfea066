package model

// StartSessionRequest is the payload for starting a practice session.
// Zero range bounds default to the whole bank, a zero time limit to the
// configured default.
type StartSessionRequest struct {
	RangeStart       int  `json:"range_start" binding:"omitempty,min=1"`
	RangeEnd         int  `json:"range_end" binding:"omitempty,min=1"`
	QuestionCount    int  `json:"question_count" binding:"required,min=1"`
	TimeLimitMinutes int  `json:"time_limit_minutes" binding:"omitempty,min=1,max=600"`
	RandomizeOptions bool `json:"randomize_options"`
}

// SubmitAnswerRequest carries presentation-slot indices (0-based).
type SubmitAnswerRequest struct {
	Selections []int `json:"selections" binding:"dive,min=0"`
}

// FinishSessionRequest is the optional body for an explicit finish.
type FinishSessionRequest struct {
	Reason string `json:"reason" binding:"omitempty,oneof=submitted completed"`
}

// PageQuery is the pagination query of list endpoints.
type PageQuery struct {
	Page    int `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=200"`
}

// RangeQuery selects a 1-based inclusive slice of the bank. Zero bounds
// mean the whole bank.
type RangeQuery struct {
	RangeStart int `form:"range_start" json:"range_start" binding:"omitempty,min=1"`
	RangeEnd   int `form:"range_end" json:"range_end" binding:"omitempty,min=1"`
}
