package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/repository"
	pkgerrors "github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/errors"
)

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms     map[string]*model.Room
	listErr   error
	updateErr error
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.RoomID == "" {
		room.RoomID = "room-" + room.Code
	}
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) ListWithDepartment(_ context.Context) ([]model.Room, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Room
	for _, r := range m.rooms {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRoomRepo) UpdateAvailability(_ context.Context, id string, available bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.rooms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.IsAvailable = available
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts []model.Department
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	m.depts = append(m.depts, *dept)
	return nil
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	return m.depts, nil
}

// ── Mock StudyProgramRepository ──

type mockStudyProgramRepo struct {
	programs []model.StudyProgram
	err      error
}

func (m *mockStudyProgramRepo) List(_ context.Context) ([]model.StudyProgram, error) {
	return m.programs, m.err
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items []model.Equipment
}

func (m *mockEquipmentRepo) ListAvailable(_ context.Context) ([]model.Equipment, error) {
	var result []model.Equipment
	for _, e := range m.items {
		if e.IsAvailable {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEquipmentRepo) CountAvailableByIDs(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		for _, e := range m.items {
			if e.EquipmentID == id && e.IsAvailable {
				n++
			}
		}
	}
	return n, nil
}

// ── Mock BookingRepository ──

// mockBookingRepo 以互斥锁模拟事务：SupersedeAndCreate 失败时不留下任何修改
type mockBookingRepo struct {
	mu           sync.Mutex
	bookings     map[string]*model.Booking
	seq          int
	listErr      error
	createErr    error
	supersedeErr error
	createDelay  time.Duration
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("booking-%d", m.seq)
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.BookingID == "" {
		booking.BookingID = m.nextID()
	}
	if booking.Version == 0 {
		booking.Version = 1
	}
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListApprovedBetween(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.Status != model.BookingStatusApproved || !b.StartTime.Before(to) {
			continue
		}
		if b.EndTime != nil && b.EndTime.Before(from) {
			continue
		}
		if b.EndTime == nil && b.StartTime.Before(from) {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (m *mockBookingRepo) SupersedeAndCreate(_ context.Context, booking *model.Booking) ([]string, error) {
	if m.createDelay > 0 {
		time.Sleep(m.createDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.supersedeErr != nil {
		return nil, m.supersedeErr
	}

	var superseded []string
	for id, b := range m.bookings {
		if b.RoomID == booking.RoomID && b.Status == model.BookingStatusApproved {
			superseded = append(superseded, id)
		}
	}
	if m.createErr != nil {
		return nil, m.createErr
	}

	sort.Strings(superseded)
	for _, id := range superseded {
		m.bookings[id].Status = model.BookingStatusCompleted
		m.bookings[id].Version++
	}
	booking.BookingID = m.nextID()
	booking.Version = 1
	m.bookings[booking.BookingID] = booking
	return superseded, nil
}

func (m *mockBookingRepo) countByStatus(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.Status == status {
			n++
		}
	}
	return n
}

// ── Mock LectureRepository ──

type mockLectureRepo struct {
	lectures []model.LectureSchedule
	err      error
}

func (m *mockLectureRepo) Create(_ context.Context, l *model.LectureSchedule) error {
	m.lectures = append(m.lectures, *l)
	return nil
}

func (m *mockLectureRepo) ListByDay(_ context.Context, day int) ([]model.LectureSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.LectureSchedule
	for _, l := range m.lectures {
		if l.DayOfWeek == day {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	exams []model.ExamSchedule
	err   error
}

func (m *mockExamRepo) Create(_ context.Context, e *model.ExamSchedule) error {
	m.exams = append(m.exams, *e)
	return nil
}

func (m *mockExamRepo) ListByDate(_ context.Context, date time.Time) ([]model.ExamSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.ExamSchedule
	for _, e := range m.exams {
		if e.ExamDate.Format("2006-01-02") == date.Format("2006-01-02") {
			result = append(result, e)
		}
	}
	return result, nil
}

// ── Mock RoomLocker ──

type mockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string)}
}

func (m *mockLocker) AcquireRoomLock(_ context.Context, roomID string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.held[roomID]; ok {
		return "", pkgerrors.ErrRoomLocked
	}
	token := "token-" + roomID
	m.held[roomID] = token
	return token, nil
}

func (m *mockLocker) ReleaseRoomLock(_ context.Context, roomID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[roomID] == token {
		delete(m.held, roomID)
		m.released++
	}
	return nil
}

// ── Mock RefreshTrigger ──

type mockTrigger struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (m *mockTrigger) Refresh(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, reason)
	return m.err
}

// ── 组装 ──

type mockRepos struct {
	room      *mockRoomRepo
	dept      *mockDeptRepo
	program   *mockStudyProgramRepo
	equipment *mockEquipmentRepo
	booking   *mockBookingRepo
	lecture   *mockLectureRepo
	exam      *mockExamRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		room:      newMockRoomRepo(),
		dept:      &mockDeptRepo{},
		program:   &mockStudyProgramRepo{},
		equipment: &mockEquipmentRepo{},
		booking:   newMockBookingRepo(),
		lecture:   &mockLectureRepo{},
		exam:      &mockExamRepo{},
	}
	repo := &repository.Repository{
		Room:         m.room,
		Department:   m.dept,
		StudyProgram: m.program,
		Equipment:    m.equipment,
		Booking:      m.booking,
		Lecture:      m.lecture,
		Exam:         m.exam,
	}
	return repo, m
}

func strPtr(s string) *string { return &s }
