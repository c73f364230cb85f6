package ledger

type LedgerResponse struct {
	UserID              string `json:"user_id"`
	Year                int    `json:"year"`
	Q1                  int    `json:"q1"`
	Q2                  int    `json:"q2"`
	Q3                  int    `json:"q3"`
	Q4                  int    `json:"q4"`
	CarriedFromLastYear int    `json:"carried_from_last_year"`
	OptionalUsed        int    `json:"optional_used"`
	TotalAvailable      int    `json:"total_available"`
	CarryCalculated     bool   `json:"carry_calculated"`
}
