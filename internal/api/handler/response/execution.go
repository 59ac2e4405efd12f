package response

type PlanValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}
