package types

import (
	"encoding/json"
	"testing"
)

func TestResourceIDUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ResourceID
		wantErr  bool
	}{
		{"string", `"task-1"`, "task-1", false},
		{"integer", `42`, "42", false},
		{"float", `4.5`, "4.5", false},
		{"null", `null`, "", false},
		{"object", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ResourceID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, id)
			}
		})
	}
}

func TestPlanItemDecodesNumericID(t *testing.T) {
	var items []PlanItem
	data := `[{"id": 7, "title": "Learn SQL", "url": "https://x", "xp_points": 50}]`
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if items[0].ID != "7" || items[0].XPPoints != 50 {
		t.Errorf("Expected id 7 with 50 xp, got %+v", items[0])
	}
}

func TestProfileCloneIsDeep(t *testing.T) {
	p := &Profile{GithubUsername: "octo", ResumeSkills: []string{"Go"}}
	c := p.Clone()
	c.ResumeSkills[0] = "Rust"
	if p.ResumeSkills[0] != "Go" {
		t.Errorf("Expected original skills untouched, got %v", p.ResumeSkills)
	}

	var nilProfile *Profile
	if nilProfile.Clone() != nil {
		t.Error("Expected nil clone of nil profile")
	}
	if nilProfile.HasHandle() {
		t.Error("Expected nil profile to have no handle")
	}
}

func TestUpdateFromProfileCarriesAllFields(t *testing.T) {
	p := &Profile{GithubUsername: "octo", FullName: "Octo Cat", Bio: "hi", LinkedinURL: "https://linkedin.com/in/octo", IsPublic: true}
	u := UpdateFromProfile("u1", p)
	if u.UserID != "u1" || u.GithubUsername != "octo" || u.FullName != "Octo Cat" || u.Bio != "hi" || !u.IsPublic {
		t.Errorf("Expected all fields carried, got %+v", u)
	}
	if u.LinkedinURL != p.LinkedinURL {
		t.Errorf("Expected linkedin %s, got %s", p.LinkedinURL, u.LinkedinURL)
	}
}

func TestResourceIDMarshal(t *testing.T) {
	tests := []struct {
		id       ResourceID
		expected string
	}{
		{"42", `42`},
		{"-3", `-3`},
		{"task-1", `"task-1"`},
		{"007", `"007"`},
		{"4.5", `"4.5"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, data)
			}
		})
	}
}

func TestProgressUpdateKeepsNumericResourceID(t *testing.T) {
	var items []PlanItem
	if err := json.Unmarshal([]byte(`[{"id": 42, "title": "Learn SQL"}]`), &items); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := json.Marshal(ProgressUpdate{UserID: "u1", ResourceID: items[0].ID, IsComplete: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := `{"user_id":"u1","resource_id":42,"is_complete":true}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
