package schedule

type RunQuarterlyCreditRequest struct {
	AsOf string `json:"as_of" binding:"required"`
}

type RunYearEndCarryRequest struct {
	Action string `json:"action" binding:"required,oneof=calculate apply"`
	Year   int    `json:"year" binding:"required,min=2000,max=2200"`
}
