package entities

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestJobDisplayLocation(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want string
	}{
		{"remote wins", Job{IsRemote: true, City: "Pune"}, "Remote"},
		{"explicit location", Job{Location: "Bengaluru, KA, IN", City: "Bengaluru"}, "Bengaluru, KA, IN"},
		{"city and state", Job{City: "Pune", State: "MH"}, "Pune, MH"},
		{"city only", Job{City: "Pune"}, "Pune"},
		{"nothing", Job{}, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.DisplayLocation(); got != tt.want {
				t.Errorf("DisplayLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJobDisplaySalary(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want string
	}{
		{"not disclosed", Job{}, "Not Disclosed"},
		{"preformatted", Job{Salary: "12 LPA"}, "12 LPA"},
		{"range", Job{MinSalary: floatPtr(50000), MaxSalary: floatPtr(80000), SalaryCurrency: "INR", SalaryPeriod: "MONTH"}, "INR 50000 - 80000 / month"},
		{"min only", Job{MinSalary: floatPtr(40000)}, "40000"},
		{"max only", Job{MaxSalary: floatPtr(90000)}, "90000"},
		{"equal bounds", Job{MinSalary: floatPtr(1000), MaxSalary: floatPtr(1000)}, "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.DisplaySalary(); got != tt.want {
				t.Errorf("DisplaySalary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJobDisplayEmploymentType(t *testing.T) {
	if got := (&Job{}).DisplayEmploymentType(); got != "Other" {
		t.Errorf("DisplayEmploymentType() = %q, want Other", got)
	}
	if got := (&Job{EmploymentType: "FULLTIME"}).DisplayEmploymentType(); got != "FULLTIME" {
		t.Errorf("DisplayEmploymentType() = %q, want FULLTIME", got)
	}
}

func TestNewBookmark(t *testing.T) {
	job := &Job{ID: "j1", Title: "Go Engineer", EmployerName: "Acme", IsRemote: true}
	b := NewBookmark("u1", job)
	if b.UserID != "u1" || b.JobID != "j1" {
		t.Fatalf("unexpected keys: %+v", b)
	}
	if b.Location != "Remote" || b.Salary != "Not Disclosed" || b.Type != "Other" {
		t.Errorf("display fields not applied: %+v", b)
	}
}

func TestIdentitySame(t *testing.T) {
	var none *Identity
	a := &Identity{ID: "u1", Email: "a@example.com"}
	a2 := &Identity{ID: "u1", Email: "changed@example.com"}
	b := &Identity{ID: "u2"}

	if !none.Same(nil) {
		t.Error("nil should equal nil")
	}
	if none.Same(a) || a.Same(nil) {
		t.Error("nil should not equal non-nil")
	}
	if !a.Same(a2) {
		t.Error("same id should be the same identity")
	}
	if a.Same(b) {
		t.Error("different ids should differ")
	}
}

func TestProfileMissingFields(t *testing.T) {
	p := &Profile{Name: "Asha", City: "Pune"}
	got := p.MissingFields()
	want := []string{"education", "preferred_role", "experience"}
	if len(got) != len(want) {
		t.Fatalf("MissingFields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingFields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUserPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{PasswordHash: &hash}
	if !u.VerifyPassword("secret1") {
		t.Error("expected password to verify")
	}
	if u.VerifyPassword("wrong") {
		t.Error("expected wrong password to fail")
	}
	if (&User{}).VerifyPassword("secret1") {
		t.Error("user without hash should never verify")
	}
}
