package app

import (
	"context"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"go.uber.org/zap"
)

// BankService is the teacher's nested "create question bank" form: it loads
// a bank, validates it and sends it over the socket as a full subject.
type BankService struct {
	em       socket.Emitter
	loader   BankLoader
	subjects SubjectCache
	timeout  time.Duration
	logger   *zap.Logger
}

func NewBankService(em socket.Emitter, loader BankLoader, subjects SubjectCache, timeout time.Duration, logger *zap.Logger) *BankService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankService{em: em, loader: loader, subjects: subjects, timeout: timeout, logger: logger}
}

// MySubjects lists the teacher's subjects over the socket.
func (s *BankService) MySubjects(ctx context.Context, teacherID string) ([]domain.Subject, error) {
	reply, err := Request(ctx, s.em, protocol.GetMySubjects, map[string]string{"teacherId": teacherID},
		[]string{protocol.SubjectsList}, []string{protocol.Error}, s.timeout)
	if err != nil {
		return nil, err
	}
	return protocol.DecodeSubjects(reply.Payload)
}

// Create loads bankID, stamps it with the teacher and publishes it.
func (s *BankService) Create(ctx context.Context, bankID, teacherID string) (domain.Subject, error) {
	if s.loader == nil {
		return domain.Subject{}, domain.ErrBankNotFound
	}
	bank, err := s.loader.LoadBank(ctx, bankID)
	if err != nil {
		return domain.Subject{}, err
	}
	if teacherID != "" {
		bank.TeacherID = teacherID
	}
	return s.Publish(ctx, bank)
}

// Publish validates bank and sends it with create-full-subject.
func (s *BankService) Publish(ctx context.Context, bank domain.Bank) (domain.Subject, error) {
	if err := domain.Validate(bank); err != nil {
		return domain.Subject{}, err
	}
	reply, err := Request(ctx, s.em, protocol.CreateFullSubject, protocol.EncodeBank(bank),
		[]string{protocol.SubjectCreatedOK}, []string{protocol.Error}, s.timeout)
	if err != nil {
		return domain.Subject{}, err
	}
	subject, err := protocol.DecodeSubjectCreated(reply.Payload)
	if err != nil {
		return domain.Subject{}, err
	}
	if s.subjects != nil {
		if err := s.subjects.Invalidate(ctx, bank.TeacherID); err != nil {
			s.logger.Warn("subject cache invalidate failed", zap.Error(err))
		}
	}
	s.logger.Info("bank published",
		zap.String("bank", bank.Name),
		zap.Int("questions", len(bank.Questions)),
		zap.String("subject", subject.ID),
	)
	return subject, nil
}
