// Package seed loads the initial roster and accounts from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/workday"
	"gopkg.in/yaml.v3"
)

type File struct {
	Districts []District `yaml:"districts"`
	Teams     []Team     `yaml:"teams"`
	Users     []User     `yaml:"users"`
	Workers   []Worker   `yaml:"workers"`
}

type District struct {
	Name string `yaml:"name"`
}

type Team struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	District string `yaml:"district"`
}

type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	Team     string `yaml:"team"`
}

type Worker struct {
	FullName   string `yaml:"full_name"`
	NationalID string `yaml:"national_id"`
	Team       string `yaml:"team"`
	StartDate  string `yaml:"start_date"`
}

// Load decodes a seed file, rejecting unknown keys.
func Load(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// Validate checks cross references by name before anything is written.
func (f File) Validate() error {
	districts := make(map[string]bool, len(f.Districts))
	for _, d := range f.Districts {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("district with empty name")
		}
		districts[d.Name] = true
	}

	teams := make(map[string]bool, len(f.Teams))
	for _, t := range f.Teams {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("team with empty name")
		}
		if t.Capacity < 0 {
			return fmt.Errorf("team %q: capacity must not be negative", t.Name)
		}
		if t.District != "" && !districts[t.District] {
			return fmt.Errorf("team %q: unknown district %q", t.Name, t.District)
		}
		teams[t.Name] = true
	}

	for _, u := range f.Users {
		role, ok := user.ParseRole(u.Role)
		if !ok {
			return fmt.Errorf("user %q: %w %q", u.Email, user.ErrInvalidRole, u.Role)
		}
		if u.Email == "" || u.Password == "" {
			return fmt.Errorf("user %q: email and password are required", u.Email)
		}
		if role == user.RoleTeamLead && !teams[u.Team] {
			return fmt.Errorf("user %q: team lead needs a known team, got %q", u.Email, u.Team)
		}
	}

	for _, w := range f.Workers {
		if !teams[w.Team] {
			return fmt.Errorf("worker %q: unknown team %q", w.FullName, w.Team)
		}
		if w.StartDate != "" {
			if _, err := workday.Parse(w.StartDate); err != nil {
				return fmt.Errorf("worker %q: %w", w.FullName, err)
			}
		}
	}
	return nil
}

// Seeder writes a seed file through the repositories.
type Seeder struct {
	Transactor   database.Transactor
	Districts    roster.DistrictRepository
	Teams        roster.TeamRepository
	Workers      roster.WorkerRepository
	Memberships  roster.MembershipRepository
	Users        user.UserRepository
	HashPassword func(string) (string, error)
	Clock        clock.Clock
}

// Summary counts the rows created.
type Summary struct {
	Districts, Teams, Users, Workers int
}

// Run writes f in one transaction.
func (s *Seeder) Run(ctx context.Context, f File) (Summary, error) {
	if err := f.Validate(); err != nil {
		return Summary{}, err
	}

	clk := s.Clock
	if clk == nil {
		clk = clock.Real()
	}
	today := workday.DateOf(clk.Now())

	var sum Summary
	err := s.Transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		districtIDs := make(map[string]string, len(f.Districts))
		for _, d := range f.Districts {
			created, err := s.Districts.Create(txCtx, roster.District{Name: d.Name})
			if err != nil {
				return fmt.Errorf("create district %q: %w", d.Name, err)
			}
			districtIDs[d.Name] = created.ID
			sum.Districts++
		}

		teamIDs := make(map[string]string, len(f.Teams))
		for _, t := range f.Teams {
			team := roster.Team{Name: t.Name, Capacity: t.Capacity}
			if id, ok := districtIDs[t.District]; ok {
				team.DistrictID = &id
			}
			created, err := s.Teams.Create(txCtx, team)
			if err != nil {
				return fmt.Errorf("create team %q: %w", t.Name, err)
			}
			teamIDs[t.Name] = created.ID
			sum.Teams++
		}

		for _, u := range f.Users {
			hash, err := s.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("hash password for %q: %w", u.Email, err)
			}
			role, _ := user.ParseRole(u.Role)
			newUser := user.User{
				Email:        strings.ToLower(strings.TrimSpace(u.Email)),
				PasswordHash: &hash,
				FullName:     u.FullName,
				Role:         role,
			}
			if id, ok := teamIDs[u.Team]; ok && role == user.RoleTeamLead {
				newUser.TeamID = &id
			}
			if _, err := s.Users.Create(txCtx, newUser); err != nil {
				return fmt.Errorf("create user %q: %w", u.Email, err)
			}
			sum.Users++
		}

		for _, w := range f.Workers {
			worker := roster.Worker{FullName: w.FullName, Status: roster.WorkerActive}
			if w.NationalID != "" {
				nid := w.NationalID
				worker.NationalID = &nid
			}
			created, err := s.Workers.Create(txCtx, worker)
			if err != nil {
				return fmt.Errorf("create worker %q: %w", w.FullName, err)
			}

			start := today
			if w.StartDate != "" {
				if start, err = workday.Parse(w.StartDate); err != nil {
					return fmt.Errorf("worker %q: %w", w.FullName, err)
				}
			}
			if _, err := s.Memberships.Create(txCtx, roster.TeamMembership{
				WorkerID:  created.ID,
				TeamID:    teamIDs[w.Team],
				StartDate: start,
				Active:    true,
			}); err != nil {
				return fmt.Errorf("add worker %q to team %q: %w", w.FullName, w.Team, err)
			}
			sum.Workers++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	slog.Info("seed completed", "districts", sum.Districts, "teams", sum.Teams, "users", sum.Users, "workers", sum.Workers)
	return sum, nil
}
