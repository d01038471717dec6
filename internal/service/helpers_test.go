package service

import (
	"context"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New()
}

type examRepoStub struct {
	mu     sync.Mutex
	exams  map[uint]models.Exam
	nextID uint
}

func newExamRepoStub(exams ...models.Exam) *examRepoStub {
	stub := &examRepoStub{exams: make(map[uint]models.Exam)}
	for _, exam := range exams {
		stub.exams[exam.ID] = exam
		if exam.ID > stub.nextID {
			stub.nextID = exam.ID
		}
	}
	return stub
}

func (s *examRepoStub) List(ctx context.Context, ownerID uint) ([]models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Exam
	for _, exam := range s.exams {
		if ownerID == 0 || exam.OwnerID == ownerID {
			out = append(out, exam)
		}
	}
	return out, nil
}

func (s *examRepoStub) GetByID(ctx context.Context, id uint, relations repository.ExamRelations) (models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (s *examRepoStub) Create(ctx context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	exam.ID = s.nextID
	s.exams[exam.ID] = *exam
	return nil
}

func (s *examRepoStub) Update(ctx context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.exams[exam.ID] = *exam
	return nil
}

func (s *examRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	exam.Status = status
	s.exams[id] = exam
	return nil
}

func (s *examRepoStub) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.exams, id)
	return nil
}

type sectionRepoStub struct {
	mu       sync.Mutex
	sections []models.Section
	nextID   uint
}

func newSectionRepoStub(sections ...models.Section) *sectionRepoStub {
	stub := &sectionRepoStub{sections: sections}
	for _, section := range sections {
		if section.ID > stub.nextID {
			stub.nextID = section.ID
		}
	}
	return stub
}

func (s *sectionRepoStub) ListByExam(ctx context.Context, examID uint) ([]models.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Section
	for _, section := range s.sections {
		if section.ExamID == examID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (s *sectionRepoStub) GetByID(ctx context.Context, id uint) (models.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, section := range s.sections {
		if section.ID == id {
			return section, nil
		}
	}
	return models.Section{}, gorm.ErrRecordNotFound
}

func (s *sectionRepoStub) Create(ctx context.Context, section *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	section.ID = s.nextID
	s.sections = append(s.sections, *section)
	return nil
}

func (s *sectionRepoStub) Update(ctx context.Context, section *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sections {
		if s.sections[i].ID == section.ID {
			s.sections[i] = *section
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *sectionRepoStub) CountQuestions(ctx context.Context, sectionID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, section := range s.sections {
		if section.ID == sectionID {
			return int64(len(section.Questions)), nil
		}
	}
	return 0, nil
}

type questionRepoStub struct {
	mu        sync.Mutex
	questions map[uint]models.Question
	nextID    uint
}

func newQuestionRepoStub() *questionRepoStub {
	return &questionRepoStub{questions: make(map[uint]models.Question)}
}

func (s *questionRepoStub) GetByID(ctx context.Context, id uint) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (s *questionRepoStub) ListBySection(ctx context.Context, sectionID uint) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Question
	for _, question := range s.questions {
		if question.SectionID == sectionID {
			out = append(out, question)
		}
	}
	return out, nil
}

func (s *questionRepoStub) Create(ctx context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	question.ID = s.nextID
	s.questions[question.ID] = *question
	return nil
}

func (s *questionRepoStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

type invitationRepoStub struct {
	mu          sync.Mutex
	invitations map[uint]models.Invitation
	nextID      uint
}

func newInvitationRepoStub(invitations ...models.Invitation) *invitationRepoStub {
	stub := &invitationRepoStub{invitations: make(map[uint]models.Invitation)}
	for _, invitation := range invitations {
		stub.invitations[invitation.ID] = invitation
		if invitation.ID > stub.nextID {
			stub.nextID = invitation.ID
		}
	}
	return stub
}

func (s *invitationRepoStub) ListByExam(ctx context.Context, examID uint) ([]models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invitation
	for _, invitation := range s.invitations {
		if invitation.ExamID == examID {
			out = append(out, invitation)
		}
	}
	return out, nil
}

func (s *invitationRepoStub) GetByID(ctx context.Context, id uint) (models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitation, ok := s.invitations[id]
	if !ok {
		return models.Invitation{}, gorm.ErrRecordNotFound
	}
	return invitation, nil
}

func (s *invitationRepoStub) CreateBatch(ctx context.Context, invitations []models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range invitations {
		s.nextID++
		invitations[i].ID = s.nextID
		s.invitations[invitations[i].ID] = invitations[i]
	}
	return nil
}

func (s *invitationRepoStub) Update(ctx context.Context, invitation *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[invitation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.invitations[invitation.ID] = *invitation
	return nil
}

type sheetRepoStub struct {
	mu      sync.Mutex
	sheets  map[uint]models.AnswerSheet
	pending int64
}

func newSheetRepoStub(sheets ...models.AnswerSheet) *sheetRepoStub {
	stub := &sheetRepoStub{sheets: make(map[uint]models.AnswerSheet)}
	for _, sheet := range sheets {
		stub.sheets[sheet.ID] = sheet
	}
	return stub
}

func (s *sheetRepoStub) GetByID(ctx context.Context, id uint) (models.AnswerSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet, ok := s.sheets[id]
	if !ok {
		return models.AnswerSheet{}, gorm.ErrRecordNotFound
	}
	return sheet, nil
}

func (s *sheetRepoStub) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[sheet.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.sheets[sheet.ID] = *sheet
	return nil
}

func (s *sheetRepoStub) CountPendingByExam(ctx context.Context, examID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}
