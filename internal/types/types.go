package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Profile represents one row of the profiles table
type Profile struct {
	ID             string   `json:"id,omitempty"`
	GithubUsername string   `json:"github_username"`
	ResumeSkills   []string `json:"resume_skills"`
	TotalXP        int      `json:"total_xp"`
	FullName       string   `json:"full_name"`
	Bio            string   `json:"bio"`
	LinkedinURL    string   `json:"linkedin_url"`
	IsPublic       bool     `json:"is_public"`
}

// HasHandle reports whether a GitHub username has been saved
func (p *Profile) HasHandle() bool {
	return p != nil && p.GithubUsername != ""
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.ResumeSkills != nil {
		c.ResumeSkills = append([]string(nil), p.ResumeSkills...)
	}
	return &c
}

// ProfileUpdate is the full field set sent to /profile/update
type ProfileUpdate struct {
	UserID         string `json:"user_id" validate:"required,uuid"`
	GithubUsername string `json:"github_username" validate:"required,max=39,githubhandle"`
	FullName       string `json:"full_name" validate:"max=100"`
	Bio            string `json:"bio" validate:"max=1000"`
	LinkedinURL    string `json:"linkedin_url" validate:"omitempty,url,max=300"`
	IsPublic       bool   `json:"is_public"`
}

// UpdateFromProfile builds an update carrying every stored field of p
func UpdateFromProfile(userID string, p *Profile) ProfileUpdate {
	u := ProfileUpdate{UserID: userID}
	if p != nil {
		u.GithubUsername = p.GithubUsername
		u.FullName = p.FullName
		u.Bio = p.Bio
		u.LinkedinURL = p.LinkedinURL
		u.IsPublic = p.IsPublic
	}
	return u
}

// Recommendation is one ranked career path from an analysis pass
type Recommendation struct {
	Career            string   `json:"career"`
	Score             float64  `json:"score"`
	MatchedSkills     []string `json:"matched_skills"`
	AllRequiredSkills []string `json:"all_required_skills"`
}

// Clone returns a deep copy of the recommendation
func (r Recommendation) Clone() Recommendation {
	r.MatchedSkills = append([]string(nil), r.MatchedSkills...)
	r.AllRequiredSkills = append([]string(nil), r.AllRequiredSkills...)
	return r
}

// ResourceID identifies a learning-plan item. The backend emits either
// JSON strings or integers; both decode to the same textual form, and
// integer ids are written back as JSON numbers.
type ResourceID string

// MarshalJSON writes canonical integers as numbers and anything else as a string
func (id ResourceID) MarshalJSON() ([]byte, error) {
	if i, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(i, 10) == string(id) {
		return []byte(string(id)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a string or a number
func (id *ResourceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ResourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("resource id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ResourceID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ResourceID(n.String())
	return nil
}

// PlanItem is one entry of a learning plan
type PlanItem struct {
	ID       ResourceID `json:"id"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	XPPoints int        `json:"xp_points"`
}

// PlanRequest is the body of /generate-plan
type PlanRequest struct {
	UserSkills   []string       `json:"user_skills"`
	TargetCareer Recommendation `json:"target_career"`
}

// ProgressUpdate is the body of POST /learning-progress
type ProgressUpdate struct {
	UserID     string     `json:"user_id"`
	ResourceID ResourceID `json:"resource_id"`
	IsComplete bool       `json:"is_complete"`
}

// ResumeResult is the success body of /upload-resume
type ResumeResult struct {
	SkillsFound []string `json:"skills_found"`
}

// Job is one posting from /jobs
type Job struct {
	ID          ResourceID `json:"id"`
	Title       string     `json:"title"`
	CompanyName string     `json:"company_name"`
	Location    string     `json:"location"`
	ApplyLink   string     `json:"apply_link"`
}

// Project is one synced GitHub repository shown on a portfolio
type Project struct {
	ID          ResourceID `json:"id"`
	RepoName    string     `json:"repo_name"`
	RepoURL     string     `json:"repo_url"`
	Description string     `json:"description"`
	Stars       int        `json:"stars"`
	Languages   []string   `json:"languages"`
}

// Portfolio is the combined public document from /portfolio/{handle}
type Portfolio struct {
	Profile  Profile   `json:"profile"`
	Projects []Project `json:"projects"`
}

// InterviewStart is the body of /start-interview
type InterviewStart struct {
	CareerPath string `json:"career_path"`
}

// InterviewAnswer is the body of /submit-answer
type InterviewAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Question is a generated interview question
type Question struct {
	Text string `json:"question_text"`
}

// Feedback is the graded response to an interview answer
type Feedback struct {
	Text string `json:"feedback"`
}

// Message is a plain acknowledgement such as the scrape or sync result
type Message struct {
	Message string `json:"message"`
}
