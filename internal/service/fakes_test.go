package service

import (
	"context"
	"course_platform/internal/model"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the relational store. Membership sets
// are maps so set-union semantics match the join tables.
type memStore struct {
	mu sync.Mutex

	nextID uint

	courses        map[uint]*model.Course
	lectures       map[uint]*model.Lecture
	courseLectures map[uint]map[uint]bool
	courseStudents map[uint]map[uint]bool
	users          map[uint]*model.User
	userCourses    map[uint]map[uint]bool
	purchases      map[string]*model.CoursePurchase
	progress       map[[2]uint]*model.CourseProgress

	now func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		courses:        map[uint]*model.Course{},
		lectures:       map[uint]*model.Lecture{},
		courseLectures: map[uint]map[uint]bool{},
		courseStudents: map[uint]map[uint]bool{},
		users:          map[uint]*model.User{},
		userCourses:    map[uint]map[uint]bool{},
		purchases:      map[string]*model.CoursePurchase{},
		progress:       map[[2]uint]*model.CourseProgress{},
		now:            time.Now,
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func addToSet(sets map[uint]map[uint]bool, key, member uint) {
	if sets[key] == nil {
		sets[key] = map[uint]bool{}
	}
	sets[key][member] = true
}

func sortedKeys(set map[uint]bool) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---- CourseStore ----

type memCourses struct{ *memStore }

func (m memCourses) Create(ctx context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	course.ID = m.id()
	course.CreatedAt = m.now()
	c := *course
	m.courses[c.ID] = &c
	return nil
}

func (m memCourses) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCourses) FindDetails(ctx context.Context, id uint) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Lectures = []model.Lecture{}
	for _, lid := range sortedKeys(m.courseLectures[id]) {
		if l, ok := m.lectures[lid]; ok {
			cp.Lectures = append(cp.Lectures, *l)
		}
	}
	cp.EnrolledStudents = []model.User{}
	for _, uid := range sortedKeys(m.courseStudents[id]) {
		cp.EnrolledStudents = append(cp.EnrolledStudents, model.User{BaseModel: model.BaseModel{ID: uid}})
	}
	return &cp, nil
}

func (m memCourses) Update(ctx context.Context, course *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *course
	c.Lectures, c.EnrolledStudents = nil, nil
	m.courses[c.ID] = &c
	return nil
}

func (m memCourses) SetPublished(ctx context.Context, id uint, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[id]; ok {
		c.IsPublished = published
	}
	return nil
}

func (m memCourses) FindByCreator(ctx context.Context, creatorID uint) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Course
	for _, c := range m.courses {
		if c.CreatorID == creatorID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memCourses) FindByIDs(ctx context.Context, ids []uint) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Course
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m memCourses) FindPublished(ctx context.Context) ([]model.Course, error) {
	return m.Search(ctx, model.CourseSearch{})
}

func (m memCourses) Search(ctx context.Context, criteria model.CourseSearch) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(criteria.Query))
	var out []model.Course
	for _, c := range m.courses {
		if !c.IsPublished {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(c.SubTitle), q) &&
			!strings.Contains(strings.ToLower(c.Category), q) {
			continue
		}
		if len(criteria.Categories) > 0 {
			found := false
			for _, cat := range criteria.Categories {
				if cat == c.Category {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		switch criteria.PriceSort {
		case model.PriceSortAsc:
			return out[i].Price < out[j].Price
		case model.PriceSortDesc:
			return out[i].Price > out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m memCourses) LectureIDs(ctx context.Context, courseID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.courseLectures[courseID]), nil
}

func (m memCourses) EnsureLectureMembership(ctx context.Context, courseID, lectureID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addToSet(m.courseLectures, courseID, lectureID)
	return nil
}

func (m memCourses) AddEnrolledStudent(ctx context.Context, courseID, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addToSet(m.courseStudents, courseID, userID)
	return nil
}

// ---- LectureStore ----

type memLectures struct{ *memStore }

func (m memLectures) CreateInCourse(ctx context.Context, lecture *model.Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lecture.ID = m.id()
	l := *lecture
	m.lectures[l.ID] = &l
	addToSet(m.courseLectures, l.CourseID, l.ID)
	return nil
}

func (m memLectures) FindByID(ctx context.Context, id uint) (*model.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lectures[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m memLectures) FindByCourse(ctx context.Context, courseID uint) ([]model.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Lecture{}
	for _, id := range sortedKeys(m.courseLectures[courseID]) {
		if l, ok := m.lectures[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m memLectures) Update(ctx context.Context, lecture *model.Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := *lecture
	m.lectures[l.ID] = &l
	return nil
}

func (m memLectures) DeleteWithMembership(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lectures, id)
	for _, set := range m.courseLectures {
		delete(set, id)
	}
	return nil
}

func (m memLectures) SetPreviewFreeByCourse(ctx context.Context, courseID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.courseLectures[courseID] {
		if l, ok := m.lectures[id]; ok {
			l.IsPreviewFree = true
		}
	}
	return nil
}

// ---- UserStore ----

type memUsers struct{ *memStore }

func (m memUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.id()
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m memUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memUsers) FindWithEnrolledCourses(ctx context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	for _, cid := range sortedKeys(m.userCourses[id]) {
		if c, ok := m.courses[cid]; ok {
			cp.EnrolledCourses = append(cp.EnrolledCourses, *c)
		}
	}
	return &cp, nil
}

func (m memUsers) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m memUsers) AddEnrolledCourse(ctx context.Context, userID, courseID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addToSet(m.userCourses, userID, courseID)
	return nil
}

// ---- PurchaseStore ----

type memPurchases struct{ *memStore }

func (m memPurchases) Create(ctx context.Context, purchase *model.CoursePurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.purchases[purchase.SessionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	purchase.ID = m.id()
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = m.now()
	}
	p := *purchase
	m.purchases[p.SessionID] = &p
	return nil
}

func (m memPurchases) Update(ctx context.Context, purchase *model.CoursePurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *purchase
	m.purchases[p.SessionID] = &p
	return nil
}

func (m memPurchases) FindBySessionID(ctx context.Context, sessionID string) (*model.CoursePurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPurchases) HasCompleted(ctx context.Context, userID, courseID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.purchases {
		if p.UserID == userID && p.CourseID == courseID && p.Status == model.PurchaseCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (m memPurchases) completed(filter func(*model.CoursePurchase) bool) []model.CoursePurchase {
	var out []model.CoursePurchase
	for _, p := range m.purchases {
		if p.Status != model.PurchaseCompleted || !filter(p) {
			continue
		}
		cp := *p
		if c, ok := m.courses[p.CourseID]; ok {
			course := *c
			cp.Course = &course
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memPurchases) FindCompletedByCourses(ctx context.Context, courseIDs []uint) ([]model.CoursePurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := map[uint]bool{}
	for _, id := range courseIDs {
		ids[id] = true
	}
	return m.completed(func(p *model.CoursePurchase) bool { return ids[p.CourseID] }), nil
}

func (m memPurchases) FindAllCompleted(ctx context.Context) ([]model.CoursePurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed(func(*model.CoursePurchase) bool { return true }), nil
}

// ---- ProgressStore ----

type memProgress struct{ *memStore }

func (m memProgress) FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[[2]uint{userID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.LectureProgress = append([]model.LectureProgress(nil), p.LectureProgress...)
	return &cp, nil
}

func (m memProgress) Save(ctx context.Context, progress *model.CourseProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if progress.ID == 0 {
		progress.ID = m.id()
	}
	cp := *progress
	cp.LectureProgress = append([]model.LectureProgress(nil), progress.LectureProgress...)
	m.progress[[2]uint{progress.UserID, progress.CourseID}] = &cp
	return nil
}

// ---- collaborators ----

type fakeAssets struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{uploaded: map[string][]byte{}}
}

func (f *fakeAssets) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = data
	return "https://assets.test/" + key, nil
}

func (f *fakeAssets) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type fakePayments struct {
	calls   []CheckoutRequest
	err     error
	counter int
	event   *model.PaymentEvent
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*model.CheckoutSession, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	f.counter++
	id := fmt.Sprintf("cs_test_%d", f.counter)
	return &model.CheckoutSession{SessionID: id, URL: "https://checkout.test/" + id}, nil
}

func (f *fakePayments) ParseWebhookEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if f.event == nil {
		return nil, errors.New("no event")
	}
	return f.event, nil
}

type fakeLocker struct {
	held     map[string]bool
	err      error
	released []string
}

func (f *fakeLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	if f.err != nil {
		return func() {}, false, f.err
	}
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[name] {
		return func() {}, false, nil
	}
	f.held[name] = true
	return func() {
		delete(f.held, name)
		f.released = append(f.released, name)
	}, true, nil
}

// fixture wires every service against one memStore.
type fixture struct {
	store      *memStore
	assets     *fakeAssets
	payments   *fakePayments
	courses    *CourseService
	progress   *ProgressService
	purchases  *PurchaseService
	enrollment *EnrollmentService
	dashboard  *DashboardService
	users      *UserService
}

func newFixture() *fixture {
	store := newMemStore()
	assets := newFakeAssets()
	payments := &fakePayments{}
	courses := memCourses{store}
	lectures := memLectures{store}
	users := memUsers{store}
	purchases := memPurchases{store}

	return &fixture{
		store:      store,
		assets:     assets,
		payments:   payments,
		courses:    NewCourseService(courses, lectures, assets),
		progress:   NewProgressService(courses, memProgress{store}),
		purchases:  NewPurchaseService(courses, purchases, payments, paymentConfig()),
		enrollment: NewEnrollmentService(purchases, users, courses, lectures, nil),
		dashboard:  NewDashboardService(courses, purchases),
		users:      NewUserService(users, assets),
	}
}
