package models

import (
	"encoding/json"
	"time"
)

const DefaultJobType = "Full-time"

type JobPosting struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	PostingDate Date      `json:"posting_date"`
	JobType     string    `json:"job_type"`
	Tags        []string  `json:"tags"`
	Description *string   `json:"description"`
	Salary      *string   `json:"salary"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarshalJSON keeps tags an array on the wire even when the slice is nil.
func (p JobPosting) MarshalJSON() ([]byte, error) {
	type alias JobPosting
	a := alias(p)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return json.Marshal(a)
}

// Clone returns a deep copy so stores never share slices or pointers with callers.
func (p *JobPosting) Clone() *JobPosting {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.Salary != nil {
		s := *p.Salary
		c.Salary = &s
	}
	return &c
}
