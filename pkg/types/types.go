package types

type AssistantReq struct {
	UserID  *string `json:"user_id"`
	Message *string `json:"message"`
}

type AssistantResp struct {
	UserID    string `json:"user_id"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type AnalyzeVideoResp struct {
	EyeContact float64 `json:"eyeContact"`
	Transcript string  `json:"transcript"`
	Feedback   string  `json:"feedback"`
}

type ErrorResp struct {
	Error string `json:"error"`
}

type HealthResp struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
