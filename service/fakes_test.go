package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"

	"gorm.io/gorm"
)

// 内存版仓储：只实现被测路径用到的方法，
// 未实现的方法通过内嵌接口在误用时直接 panic

type fakeUserRepo struct {
	repository.UserRepository
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone == user.Phone {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByPhone(phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateProfile(id uint, name, school string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user.Name = name
	user.School = school
	return user, nil
}

type membershipKey struct{ classID, studentID uint }

type fakeClassRepo struct {
	repository.ClassRepository
	mu      sync.Mutex
	nextID  uint
	classes map[uint]*models.Class
	members map[membershipKey]time.Time
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{
		classes: map[uint]*models.Class{},
		members: map[membershipKey]time.Time{},
	}
}

func (f *fakeClassRepo) Create(class *models.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	class.ID = f.nextID
	f.classes[class.ID] = class
	return nil
}

func (f *fakeClassRepo) GetByID(id uint) (*models.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	class, ok := f.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) AddMember(classID, studentID uint) (*models.ClassMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := membershipKey{classID, studentID}
	if _, ok := f.members[key]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	now := time.Now()
	f.members[key] = now
	return &models.ClassMember{ClassID: classID, StudentID: studentID, JoinedAt: now}, nil
}

func (f *fakeClassRepo) IsMember(classID, studentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.members[membershipKey{classID, studentID}]
	return ok, nil
}

func (f *fakeClassRepo) ListMembers(classID uint) ([]*repository.ClassMemberInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var members []*repository.ClassMemberInfo
	for key, joinedAt := range f.members {
		if key.classID == classID {
			members = append(members, &repository.ClassMemberInfo{ID: key.studentID, JoinedAt: joinedAt})
		}
	}
	return members, nil
}

func (f *fakeClassRepo) RemoveMember(classID, studentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, membershipKey{classID, studentID})
	return nil
}

type pointsKey struct{ studentID, classID uint }

type fakePointsRepo struct {
	mu   sync.Mutex
	rows map[pointsKey]*models.UserPoints
	// awardCalls 记录累加次数，验证不会重复入账
	awardCalls int
	// awardErr 注入入账失败
	awardErr error
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{rows: map[pointsKey]*models.UserPoints{}}
}

func (f *fakePointsRepo) Award(studentID, classID uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awardCalls++
	if f.awardErr != nil {
		return f.awardErr
	}
	key := pointsKey{studentID, classID}
	row, ok := f.rows[key]
	if !ok {
		row = &models.UserPoints{StudentID: studentID, ClassID: classID}
		f.rows[key] = row
	}
	row.TotalPoints += delta
	return nil
}

func (f *fakePointsRepo) Spend(studentID, classID uint, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[pointsKey{studentID, classID}]
	if !ok || row.TotalPoints-row.SpentPoints < amount {
		return false, nil
	}
	row.SpentPoints += amount
	return true, nil
}

func (f *fakePointsRepo) Get(studentID, classID uint) (*models.UserPoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[pointsKey{studentID, classID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakePointsRepo) RankingsByClass(classID uint) ([]*repository.RankingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []*repository.RankingRow
	for key, row := range f.rows {
		if key.classID == classID {
			rows = append(rows, &repository.RankingRow{StudentID: key.studentID, TotalPoints: row.TotalPoints})
		}
	}
	return rows, nil
}

type fakePetRepo struct {
	repository.PetRepository
	mu     sync.Mutex
	nextID uint
	pets   map[uint]*models.Pet
	points *fakePointsRepo
}

func newFakePetRepo(points *fakePointsRepo) *fakePetRepo {
	return &fakePetRepo{pets: map[uint]*models.Pet{}, points: points}
}

func (f *fakePetRepo) Create(pet *models.Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pets {
		if p.StudentID == pet.StudentID && p.ClassID == pet.ClassID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	pet.ID = f.nextID
	f.pets[pet.ID] = pet
	return nil
}

func (f *fakePetRepo) GetByStudentAndClass(studentID, classID uint) (*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pets {
		if p.StudentID == studentID && p.ClassID == classID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePetRepo) GetByIDAndStudent(petID, studentID uint) (*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.pets[petID]
	if !ok || pet.StudentID != studentID {
		return nil, gorm.ErrRecordNotFound
	}
	return pet, nil
}

func (f *fakePetRepo) ListByStudent(studentID uint) ([]*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pets []*models.Pet
	for _, p := range f.pets {
		if p.StudentID == studentID {
			pets = append(pets, p)
		}
	}
	return pets, nil
}

// Feed 与单条 UPDATE 等价：两列同时由旧行推导
func (f *fakePetRepo) Feed(petID uint, points int) (*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.pets[petID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	pet.Experience += points
	pet.Level = models.LevelForExperience(pet.Experience)
	return pet, nil
}

// FeedSpending 扣减与喂养要么都生效要么都不生效
func (f *fakePetRepo) FeedSpending(petID, studentID, classID uint, points int) (*models.Pet, bool, error) {
	ok, err := f.points.Spend(studentID, classID, points)
	if err != nil || !ok {
		return nil, false, err
	}
	pet, err := f.Feed(petID, points)
	if err != nil {
		return nil, false, err
	}
	return pet, true, nil
}

type fakeTaskRepo struct {
	repository.TaskRepository
	mu     sync.Mutex
	nextID uint
	tasks  map[uint]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uint]*models.Task{}}
}

func (f *fakeTaskRepo) Create(task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) GetByID(id uint) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) ListByClass(classID uint) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tasks []*models.Task
	for _, task := range f.tasks {
		if task.ClassID == classID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

type submissionKey struct{ taskID, studentID uint }

type fakeSubmissionRepo struct {
	repository.SubmissionRepository
	mu          sync.Mutex
	nextID      uint
	submissions map[submissionKey]*models.TaskSubmission
	points      *fakePointsRepo
}

func newFakeSubmissionRepo(points *fakePointsRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		submissions: map[submissionKey]*models.TaskSubmission{},
		points:      points,
	}
}

func (f *fakeSubmissionRepo) Create(submission *models.TaskSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := submissionKey{submission.TaskID, submission.StudentID}
	if _, ok := f.submissions[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	submission.ID = f.nextID
	f.submissions[key] = submission
	return nil
}

// CreateWithAward 模拟事务语义：入账失败时回滚已创建的提交
func (f *fakeSubmissionRepo) CreateWithAward(submission *models.TaskSubmission, classID uint, points int) error {
	if err := f.Create(submission); err != nil {
		return err
	}
	if err := f.points.Award(submission.StudentID, classID, points); err != nil {
		f.mu.Lock()
		delete(f.submissions, submissionKey{submission.TaskID, submission.StudentID})
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeSubmissionRepo) GetByTaskAndStudent(taskID, studentID uint) (*models.TaskSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[submissionKey{taskID, studentID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByTask(taskID uint) ([]*models.TaskSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var submissions []*models.TaskSubmission
	for key, submission := range f.submissions {
		if key.taskID == taskID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

type fakeACLRepo struct {
	mu       sync.Mutex
	policies map[string]*models.ObjectACLPolicy
}

func newFakeACLRepo() *fakeACLRepo {
	return &fakeACLRepo{policies: map[string]*models.ObjectACLPolicy{}}
}

func (f *fakeACLRepo) Upsert(objectPath, owner, visibility string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[objectPath] = &models.ObjectACLPolicy{ObjectPath: objectPath, Owner: owner, Visibility: visibility}
	return nil
}

func (f *fakeACLRepo) GetByPath(objectPath string) (*models.ObjectACLPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	policy, ok := f.policies[objectPath]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return policy, nil
}

func (f *fakeACLRepo) DeleteByPath(objectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.policies, objectPath)
	return nil
}

// fakePublisher 记录发布过的事件
type publishedEvent struct {
	key       string
	eventType string
	payload   map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, key, eventType string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{key: key, eventType: eventType, payload: payload})
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, e := range f.events {
		types = append(types, e.eventType)
	}
	return types
}

// fakeAI 可注入失败
type fakeAI struct {
	imageErr  error
	adviceErr error
}

func (f *fakeAI) GeneratePetImage(_ context.Context, _, _ string) ([]byte, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return []byte("png-bytes"), nil
}

func (f *fakeAI) GeneratePetAdvice(_ context.Context, studentName string, _, _ int) (string, error) {
	if f.adviceErr != nil {
		return "", f.adviceErr
	}
	return "加油，" + studentName + "！", nil
}

// fakeStorage 记录上传和策略调用
type fakeStorage struct {
	mu        sync.Mutex
	uploads   int
	uploadErr error
	policies  map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{policies: map[string]string{}}
}

func (f *fakeStorage) GetUploadURL(context.Context) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (f *fakeStorage) ConfirmUpload(context.Context, string, string, string) error {
	return errors.New("not implemented")
}

func (f *fakeStorage) UploadBytes(_ context.Context, _ []byte, _, extension string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return "/objects/uploads/fake" + extension, nil
}

func (f *fakeStorage) SetPolicy(objectPath, owner, visibility string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[objectPath] = owner + ":" + visibility
	return nil
}

func (f *fakeStorage) GetPolicy(string) (*models.ObjectACLPolicy, error) {
	return nil, ErrPolicyNotFound
}

func (f *fakeStorage) CanAccess(string, string, Permission) (bool, error) {
	return false, nil
}

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, *ObjectInfo, error) {
	return nil, nil, errors.New("not implemented")
}

func (f *fakeStorage) Delete(context.Context, string) error {
	return nil
}
