package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
)

// CreateRequest is the body of POST /jobs. Pointer fields distinguish absent values;
// id and timestamps in the body are ignored.
type CreateRequest struct {
	Title       *string  `json:"title"`
	Company     *string  `json:"company"`
	Location    *string  `json:"location"`
	PostingDate *string  `json:"posting_date"`
	JobType     *string  `json:"job_type"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
	Salary      *string  `json:"salary"`
}

// ToPosting validates the request and builds a posting stamped with now.
func (r *CreateRequest) ToPosting(now time.Time) (*JobPosting, error) {
	title, err := required("title", r.Title)
	if err != nil {
		return nil, err
	}
	company, err := required("company", r.Company)
	if err != nil {
		return nil, err
	}
	location, err := required("location", r.Location)
	if err != nil {
		return nil, err
	}

	postingDate := DateOf(now)
	if r.PostingDate != nil {
		if postingDate, err = parsePostingDate(*r.PostingDate); err != nil {
			return nil, err
		}
	}

	jobType := DefaultJobType
	if r.JobType != nil && strings.TrimSpace(*r.JobType) != "" {
		jobType = *r.JobType
	}

	return &JobPosting{
		Title:       title,
		Company:     company,
		Location:    location,
		PostingDate: postingDate,
		JobType:     jobType,
		Tags:        TagsOrEmpty(r.Tags),
		Description: copyString(r.Description),
		Salary:      copyString(r.Salary),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NullableString records whether a JSON field was present at all, so an explicit
// null can be told apart from an absent field.
type NullableString struct {
	Set   bool
	Value *string
}

// StringValue is a present, non-null NullableString.
func StringValue(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// UpdateRequest is the body of PUT /jobs/{id}. Only present fields are applied. A null
// description or salary clears it; null for any other field counts as absent.
type UpdateRequest struct {
	Title       *string        `json:"title"`
	Company     *string        `json:"company"`
	Location    *string        `json:"location"`
	PostingDate *string        `json:"posting_date"`
	JobType     *string        `json:"job_type"`
	Tags        *[]string      `json:"tags"`
	Description NullableString `json:"description"`
	Salary      NullableString `json:"salary"`
}

// Apply validates every present field, then overwrites them on p. p is untouched
// when validation fails.
func (r *UpdateRequest) Apply(p *JobPosting) error {
	var (
		title, company, location string
		postingDate              Date
		err                      error
	)
	if r.Title != nil {
		if title, err = required("title", r.Title); err != nil {
			return err
		}
	}
	if r.Company != nil {
		if company, err = required("company", r.Company); err != nil {
			return err
		}
	}
	if r.Location != nil {
		if location, err = required("location", r.Location); err != nil {
			return err
		}
	}
	if r.PostingDate != nil {
		if postingDate, err = parsePostingDate(*r.PostingDate); err != nil {
			return err
		}
	}

	if r.Title != nil {
		p.Title = title
	}
	if r.Company != nil {
		p.Company = company
	}
	if r.Location != nil {
		p.Location = location
	}
	if r.PostingDate != nil {
		p.PostingDate = postingDate
	}
	if r.JobType != nil {
		p.JobType = *r.JobType
		if strings.TrimSpace(p.JobType) == "" {
			p.JobType = DefaultJobType
		}
	}
	if r.Tags != nil {
		p.Tags = TagsOrEmpty(*r.Tags)
	}
	if r.Description.Set {
		p.Description = copyString(r.Description.Value)
	}
	if r.Salary.Set {
		p.Salary = copyString(r.Salary.Value)
	}
	return nil
}

// TagsOrEmpty copies tags as given. The result is never nil.
func TagsOrEmpty(tags []string) []string {
	return append(make([]string, 0, len(tags)), tags...)
}

// required returns value unchanged; blankness is only checked, never trimmed away.
func required(field string, value *string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", errors.Required(field)
	}
	return *value, nil
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func parsePostingDate(raw string) (Date, error) {
	d, err := ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return Date{}, errors.Validation("posting_date", "posting_date must be a YYYY-MM-DD date", err)
	}
	return d, nil
}
