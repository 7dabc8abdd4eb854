package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/studio/backend/internal/model"
	"github.com/studio/backend/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo     repository.ContactRepository
	validate *validator.Validate
	now      func() model.Timestamp
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactServiceImpl{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      model.Now,
	}
}

// Submit stamps the current local time and read=false, then persists.
func (s *contactServiceImpl) Submit(ctx context.Context, sub Submission) (*model.Contact, error) {
	if err := s.check(sub); err != nil {
		return nil, err
	}

	c := &model.Contact{
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		Timestamp: s.now(),
		Read:      false,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contactServiceImpl) List(ctx context.Context) ([]*model.Contact, error) {
	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return contacts, nil
}

func (s *contactServiceImpl) MarkRead(ctx context.Context, id int) (*model.Contact, error) {
	return s.repo.MarkRead(ctx, id)
}

// check converts validator failures into a ValidationError naming the
// offending JSON fields.
func (s *contactServiceImpl) check(sub Submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &ValidationError{Fields: fields}
}
