package models

import "encoding/json"

// FormState is the user input held by the career form.
type FormState struct {
	Career string `json:"career"`
	Years  string `json:"years"`
}

// AdviceRequest is the JSON body accepted by the advice API.
type AdviceRequest struct {
	Career string     `json:"career"`
	Years  YearsField `json:"years"`
}

// YearsField accepts years as a JSON number or string and keeps its text,
// so the API validates it the same way as the form field.
type YearsField string

func (y *YearsField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = YearsField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = YearsField(n.String())
	return nil
}

// AdviceResponse carries the raw Markdown and its rendered HTML.
type AdviceResponse struct {
	Advice string `json:"advice"`
	HTML   string `json:"html"`
}
