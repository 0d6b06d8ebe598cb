package analyst

import "github.com/m-mizutani/goerr/v2"

type Example struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Examples are sample inputs that can be loaded into the input box.
var Examples = []Example{
	{
		Label: "Permit List",
		Text:  "Texas RRC Permit Report: Laredo Petroleum filed 4 new horizontal drilling permits in the Midland Basin. Also, ExxonMobil filed 12 permits for the Delaware Basin. Diamondback Energy filed 3 in Howard County.",
	},
	{
		Label: "LinkedIn Post",
		Text:  "Excited to announce I'm joining SilverBow Resources as the new Drilling Manager for the Eagle Ford! Looking forward to ramping up operations in Q3. #oilandgas #hiring",
	},
	{
		Label: "Earnings Excerpt",
		Text:  "Chesapeake Energy Q1 Call: 'We're seeing higher than expected friction pressures in our completions. We're also planning to increase our D&C capex by 15% to accelerate our Haynesville program.'",
	},
}

// ExampleAt returns the n-th example, counting from 1.
func ExampleAt(n int) (Example, error) {
	if n < 1 || n > len(Examples) {
		return Example{}, goerr.New("no such example", goerr.V("number", n), goerr.V("available", len(Examples)))
	}
	return Examples[n-1], nil
}
