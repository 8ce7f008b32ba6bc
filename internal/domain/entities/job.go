package entities

import (
	"fmt"
	"strings"
)

// Job is a listing returned by the job search API
type Job struct {
	ID             string   `json:"job_id"`
	Title          string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	EmployerLogo   string   `json:"employer_logo,omitempty"`
	EmploymentType string   `json:"job_employment_type"`
	City           string   `json:"job_city"`
	State          string   `json:"job_state,omitempty"`
	Country        string   `json:"job_country,omitempty"`
	Location       string   `json:"job_location,omitempty"`
	IsRemote       bool     `json:"job_is_remote"`
	Description    string   `json:"job_description,omitempty"`
	ApplyLink      string   `json:"job_apply_link,omitempty"`
	Publisher      string   `json:"job_publisher,omitempty"`
	PostedAt       string   `json:"job_posted_at_datetime_utc,omitempty"`
	MinSalary      *float64 `json:"job_min_salary,omitempty"`
	MaxSalary      *float64 `json:"job_max_salary,omitempty"`
	SalaryCurrency string   `json:"job_salary_currency,omitempty"`
	SalaryPeriod   string   `json:"job_salary_period,omitempty"`
	Salary         string   `json:"job_salary,omitempty"`
}

// Employment types offered by the search filter
var JobTypeOptions = []string{"Full-time", "Part-time", "Contract", "Remote"}

// DisplayLocation returns "Remote" for remote jobs, otherwise the best known location
func (j *Job) DisplayLocation() string {
	if j.IsRemote {
		return "Remote"
	}
	if j.Location != "" {
		return j.Location
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{j.City, j.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, ", ")
}

// DisplaySalary formats the salary range, or "Not Disclosed"
func (j *Job) DisplaySalary() string {
	if j.Salary != "" {
		return j.Salary
	}
	if j.MinSalary == nil && j.MaxSalary == nil {
		return "Not Disclosed"
	}

	var amount string
	switch {
	case j.MinSalary != nil && j.MaxSalary != nil && *j.MinSalary != *j.MaxSalary:
		amount = fmt.Sprintf("%.0f - %.0f", *j.MinSalary, *j.MaxSalary)
	case j.MinSalary != nil:
		amount = fmt.Sprintf("%.0f", *j.MinSalary)
	default:
		amount = fmt.Sprintf("%.0f", *j.MaxSalary)
	}

	if j.SalaryCurrency != "" {
		amount = j.SalaryCurrency + " " + amount
	}
	if j.SalaryPeriod != "" {
		amount += " / " + strings.ToLower(j.SalaryPeriod)
	}
	return amount
}

// DisplayEmploymentType returns the employment type, or "Other" when unknown
func (j *Job) DisplayEmploymentType() string {
	if j.EmploymentType == "" {
		return "Other"
	}
	return j.EmploymentType
}
