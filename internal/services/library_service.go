package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/repository"
	"github.com/yukikurage/campus-portal/internal/utils"
)

var (
	ErrPersonAccountRequired = errors.New("please log in with a personal account")
	ErrNoLinkedReader        = errors.New("no library reader is linked to your student ID")
)

// LibraryService serves lend information and book search.
type LibraryService struct {
	repo     repository.LibraryRepository
	registry *registry.Registry
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(repo repository.LibraryRepository, reg *registry.Registry) *LibraryService {
	return &LibraryService{
		repo:     repo,
		registry: reg,
	}
}

// ReaderLendInfo groups the lend records of one reader.
type ReaderLendInfo struct {
	Reader      models.Reader
	Returned    []models.LendRecord
	NotReturned []models.LendRecord
}

// ReadersForUser returns the readers whose student ID is the user's username.
// Only personal accounts have readers.
func (s *LibraryService) ReadersForUser(ctx context.Context, user *models.User) ([]models.Reader, error) {
	if _, err := s.registry.Resolve(ctx, constants.UserTypePerson, user.ID, repository.LookupOptions{}); err != nil {
		if errors.Is(err, repository.ErrClassifiedUserNotFound) {
			return nil, ErrPersonAccountRequired
		}
		return nil, fmt.Errorf("failed to check account type: %w", err)
	}
	return s.readersByStudentID(ctx, user.Username)
}

func (s *LibraryService) readersByStudentID(ctx context.Context, studentID string) ([]models.Reader, error) {
	readers, err := s.repo.FindReadersByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find readers: %w", err)
	}
	if len(readers) == 0 {
		return nil, ErrNoLinkedReader
	}
	return readers, nil
}

// Records returns the lend records of a reader. A nil returned matches both
// returned and outstanding records; empty statuses match any status.
func (s *LibraryService) Records(ctx context.Context, readerID uint64, returned *bool, statuses ...models.LendStatus) ([]models.LendRecord, error) {
	records, err := s.repo.ListLendRecords(ctx, repository.LendRecordFilter{
		ReaderID: readerID,
		Returned: returned,
		Statuses: statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lend records: %w", err)
	}
	return records, nil
}

// LendInfo returns the records of every reader of the user, split by whether
// the book was returned.
func (s *LibraryService) LendInfo(ctx context.Context, user *models.User) ([]ReaderLendInfo, error) {
	readers, err := s.ReadersForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.lendInfo(ctx, readers)
}

// PersonLendInfo is LendInfo for a classified record that was already
// resolved, such as the one stored by the account type middleware.
func (s *LibraryService) PersonLendInfo(ctx context.Context, record models.ClassifiedUser, username string) ([]ReaderLendInfo, error) {
	if !models.IsType(record, constants.UserTypePerson) {
		return nil, ErrPersonAccountRequired
	}
	readers, err := s.readersByStudentID(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.lendInfo(ctx, readers)
}

func (s *LibraryService) lendInfo(ctx context.Context, readers []models.Reader) ([]ReaderLendInfo, error) {
	returned, notReturned := true, false
	infos := make([]ReaderLendInfo, 0, len(readers))
	for _, reader := range readers {
		done, err := s.Records(ctx, reader.ID, &returned)
		if err != nil {
			return nil, err
		}
		lent, err := s.Records(ctx, reader.ID, &notReturned)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ReaderLendInfo{
			Reader:      reader,
			Returned:    done,
			NotReturned: lent,
		})
	}
	return infos, nil
}

// SearchBooks searches books by keyword.
func (s *LibraryService) SearchBooks(ctx context.Context, keyword string, pagination utils.PaginationParams) ([]models.Book, int64, error) {
	books, total, err := s.repo.SearchBooks(ctx, repository.BookFilter{
		Keyword:    keyword,
		Pagination: pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	return books, total, nil
}
