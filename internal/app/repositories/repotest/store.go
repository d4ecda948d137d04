// Package repotest provides an in-memory implementation of the repository interfaces
// that mirrors the schema's unique, foreign key and cascade rules.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/app/repositories"
	"github.com/curriculum/planner/internal/pkg/apperrors"
)

var (
	_ repositories.IUserRepository         = (*Store)(nil)
	_ repositories.IProgramRepository      = (*Store)(nil)
	_ repositories.ICourseRepository       = (*Store)(nil)
	_ repositories.IPrerequisiteRepository = (*Store)(nil)
	_ repositories.IProgressRepository     = (*Store)(nil)
)

type prerequisiteRow struct {
	id, courseID, prereqID int64
}

type groupRow struct {
	id, courseID int64
	kind         models.GroupKind
	members      []int64
}

// Store keeps every table in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	programs map[int64]*models.Program
	courses  map[int64]*models.Course
	prereqs  []prerequisiteRow
	groups   []*groupRow
	progress []*models.StudentProgress
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*models.User),
		programs: make(map[int64]*models.Program),
		courses:  make(map[int64]*models.Course),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	s.users[user.ID] = &stored
	return user.ID, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (s *Store) IncrementTokenVersion(_ context.Context, id int64, expected int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.TokenVersion != expected {
		return 0, apperrors.ErrTokenRevoked
	}
	u.TokenVersion++
	return u.TokenVersion, nil
}

// Programs

func (s *Store) CreateProgram(_ context.Context, program *models.Program) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.programs {
		if p.Name == program.Name {
			return 0, apperrors.ErrProgramAlreadyExists
		}
	}
	program.ID = s.id()
	program.CreatedAt = time.Now()
	stored := *program
	s.programs[program.ID] = &stored
	return program.ID, nil
}

func (s *Store) EnsureProgram(ctx context.Context, name string) (int64, bool, error) {
	s.mu.Lock()
	for _, p := range s.programs {
		if p.Name == name {
			s.mu.Unlock()
			return p.ID, false, nil
		}
	}
	s.mu.Unlock()

	id, err := s.CreateProgram(ctx, &models.Program{Name: name})
	return id, err == nil, err
}

func (s *Store) GetProgramByID(_ context.Context, id int64) (*models.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) GetAllPrograms(_ context.Context) ([]*models.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteProgram(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[id]; !ok {
		return apperrors.ErrProgramNotFound
	}
	delete(s.programs, id)
	for cid, c := range s.courses {
		if c.ProgramID == id {
			s.deleteCourseLocked(cid)
		}
	}
	return nil
}

// Courses

func (s *Store) findCourseLocked(programID int64, code string) *models.Course {
	for _, c := range s.courses {
		if c.ProgramID == programID && c.Code == code {
			return c
		}
	}
	return nil
}

func (s *Store) CreateCourse(_ context.Context, course *models.Course) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[course.ProgramID]; !ok {
		return 0, apperrors.ErrProgramNotFound
	}
	if s.findCourseLocked(course.ProgramID, course.Code) != nil {
		return 0, apperrors.ErrCourseAlreadyExists
	}
	course.ID = s.id()
	course.CreatedAt = time.Now()
	stored := *course
	s.courses[course.ID] = &stored
	return course.ID, nil
}

func (s *Store) EnsureCourse(ctx context.Context, course *models.Course) (int64, bool, error) {
	s.mu.Lock()
	if existing := s.findCourseLocked(course.ProgramID, course.Code); existing != nil {
		s.mu.Unlock()
		return existing.ID, false, nil
	}
	s.mu.Unlock()

	id, err := s.CreateCourse(ctx, course)
	return id, err == nil, err
}

func (s *Store) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) coursesOfLocked(programID int64) []*models.Course {
	out := []*models.Course{}
	for _, c := range s.courses {
		if c.ProgramID == programID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetCoursesByProgram(_ context.Context, programID int64) ([]*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coursesOfLocked(programID), nil
}

func (s *Store) ListCoursesByProgram(_ context.Context, programID int64, offset uint64, limit int) ([]*models.Course, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.coursesOfLocked(programID)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *Store) FindCourseIDByCode(_ context.Context, programID int64, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *models.Course
	for _, c := range s.courses {
		if c.Code != code {
			continue
		}
		switch {
		case best == nil:
			best = c
		case (c.ProgramID == programID) != (best.ProgramID == programID):
			if c.ProgramID == programID {
				best = c
			}
		case c.ID < best.ID:
			best = c
		}
	}
	if best == nil {
		return 0, apperrors.ErrCourseNotFound
	}
	return best.ID, nil
}

func (s *Store) UpdateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if other := s.findCourseLocked(existing.ProgramID, course.Code); other != nil && other.ID != course.ID {
		return apperrors.ErrCourseAlreadyExists
	}
	existing.Code = course.Code
	existing.Name = course.Name
	existing.Credits = course.Credits
	existing.Description = course.Description
	return nil
}

func (s *Store) DeleteCourse(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	s.deleteCourseLocked(id)
	return nil
}

func (s *Store) deleteCourseLocked(id int64) {
	delete(s.courses, id)

	prereqs := s.prereqs[:0]
	for _, p := range s.prereqs {
		if p.courseID != id && p.prereqID != id {
			prereqs = append(prereqs, p)
		}
	}
	s.prereqs = prereqs

	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.courseID == id {
			continue
		}
		members := g.members[:0]
		for _, m := range g.members {
			if m != id {
				members = append(members, m)
			}
		}
		g.members = members
		groups = append(groups, g)
	}
	s.groups = groups

	progress := s.progress[:0]
	for _, p := range s.progress {
		if p.CourseID != id {
			progress = append(progress, p)
		}
	}
	s.progress = progress
}

// Prerequisites

func (s *Store) refLocked(id int64) models.CourseRef {
	c := s.courses[id]
	return models.CourseRef{ID: c.ID, Code: c.Code, Name: c.Name}
}

func (s *Store) AddPrerequisite(_ context.Context, courseID, prereqCourseID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if courseID == prereqCourseID {
		return 0, apperrors.ErrSelfPrerequisite
	}
	if s.courses[courseID] == nil || s.courses[prereqCourseID] == nil {
		return 0, apperrors.ErrCourseNotFound
	}
	for _, p := range s.prereqs {
		if p.courseID == courseID && p.prereqID == prereqCourseID {
			return 0, apperrors.ErrPrerequisiteExists
		}
	}
	row := prerequisiteRow{id: s.id(), courseID: courseID, prereqID: prereqCourseID}
	s.prereqs = append(s.prereqs, row)
	return row.id, nil
}

func (s *Store) RemovePrerequisite(_ context.Context, courseID, prereqCourseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.prereqs {
		if p.courseID == courseID && p.prereqID == prereqCourseID {
			s.prereqs = append(s.prereqs[:i], s.prereqs[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrPrerequisiteNotFound
}

func (s *Store) CreateGroup(_ context.Context, courseID int64, kind models.GroupKind, memberCourseIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.courses[courseID] == nil {
		return 0, apperrors.ErrCourseNotFound
	}
	seen := make(map[int64]bool)
	members := []int64{}
	for _, id := range memberCourseIDs {
		if s.courses[id] == nil {
			return 0, apperrors.ErrCourseNotFound
		}
		if !seen[id] {
			seen[id] = true
			members = append(members, id)
		}
	}
	g := &groupRow{id: s.id(), courseID: courseID, kind: kind, members: members}
	s.groups = append(s.groups, g)
	return g.id, nil
}

func (s *Store) DeleteGroup(_ context.Context, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.groups {
		if g.id == groupID {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrGroupNotFound
}

func (s *Store) DeleteGroupsByCourse(_ context.Context, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.courseID != courseID {
			groups = append(groups, g)
		}
	}
	s.groups = groups
	return nil
}

func (s *Store) prerequisitesLocked(match func(courseID int64) bool) []models.Prerequisite {
	out := []models.Prerequisite{}
	for _, p := range s.prereqs {
		if match(p.courseID) {
			out = append(out, models.Prerequisite{ID: p.id, CourseID: p.courseID, Prereq: s.refLocked(p.prereqID)})
		}
	}
	return out
}

func (s *Store) groupsLocked(match func(courseID int64) bool) []*models.PrerequisiteGroup {
	out := []*models.PrerequisiteGroup{}
	for _, g := range s.groups {
		if !match(g.courseID) {
			continue
		}
		group := &models.PrerequisiteGroup{ID: g.id, CourseID: g.courseID, Kind: g.kind, Members: []models.CourseRef{}}
		for _, m := range g.members {
			group.Members = append(group.Members, s.refLocked(m))
		}
		out = append(out, group)
	}
	return out
}

func (s *Store) GetPrerequisitesByCourse(_ context.Context, courseID int64) ([]models.Prerequisite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prerequisitesLocked(func(id int64) bool { return id == courseID }), nil
}

func (s *Store) GetGroupsByCourse(_ context.Context, courseID int64) ([]*models.PrerequisiteGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsLocked(func(id int64) bool { return id == courseID }), nil
}

func (s *Store) inProgramLocked(programID int64) func(int64) bool {
	return func(courseID int64) bool {
		c := s.courses[courseID]
		return c != nil && c.ProgramID == programID
	}
}

func (s *Store) GetPrerequisitesByProgram(_ context.Context, programID int64) ([]models.Prerequisite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prerequisitesLocked(s.inProgramLocked(programID)), nil
}

func (s *Store) GetGroupsByProgram(_ context.Context, programID int64) ([]*models.PrerequisiteGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsLocked(s.inProgramLocked(programID)), nil
}

// Progress

func (s *Store) UpsertProgress(_ context.Context, progress *models.StudentProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.courses[progress.CourseID] == nil {
		return apperrors.ErrCourseNotFound
	}
	progress.UpdatedAt = time.Now()
	for _, p := range s.progress {
		if p.UserID == progress.UserID && p.CourseID == progress.CourseID {
			p.Status = progress.Status
			p.UpdatedAt = progress.UpdatedAt
			progress.ID = p.ID
			return nil
		}
	}
	progress.ID = s.id()
	stored := *progress
	stored.Course = nil
	s.progress = append(s.progress, &stored)
	return nil
}

func (s *Store) GetProgressByUser(_ context.Context, userID int64) ([]*models.StudentProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.StudentProgress{}
	for _, p := range s.progress {
		if p.UserID == userID {
			cp := *p
			ref := s.refLocked(p.CourseID)
			cp.Course = &ref
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Course.Code < out[j].Course.Code })
	return out, nil
}

func (s *Store) DeleteProgress(_ context.Context, userID, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.progress {
		if p.UserID == userID && p.CourseID == courseID {
			s.progress = append(s.progress[:i], s.progress[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrProgressNotFound
}

func (s *Store) GetCompletedCourseIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []int64{}
	for _, p := range s.progress {
		if p.UserID == userID && p.Status == models.ProgressCompleted {
			ids = append(ids, p.CourseID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
