package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

// BranchState is a branch with its current head and draft.
type BranchState struct {
	Branch models.Branch   `json:"branch"`
	Head   models.Revision `json:"head"`
	Draft  models.Revision `json:"draft"`
}

// ProjectState is a project with its root branch.
type ProjectState struct {
	Project models.Project `json:"project"`
	Root    BranchState    `json:"root"`
}

func requireName(subject, name string) error {
	if strings.TrimSpace(name) != "" {
		return nil
	}
	return revisionerrors.NewValidationError(subject, revisionerrors.FieldError{
		Field:   "name",
		Message: "name is required",
		Type:    "required",
	})
}

// CreateOrganization creates an organization with the given id.
func (s *Service) CreateOrganization(ctx context.Context, id string) (*models.Organization, error) {
	if err := requireName("organization", id); err != nil {
		return nil, err
	}
	org := models.Organization{ID: id}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("organization %s: %w", id, revisionerrors.Conflict)
		}
		return tx.Create(&org).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateProject creates a project with its root branch. The root head is an
// empty start revision holding only the system tables.
func (s *Service) CreateProject(ctx context.Context, orgID, name, branchName string) (*ProjectState, error) {
	if err := requireName("project", name); err != nil {
		return nil, err
	}
	if err := requireName("branch", branchName); err != nil {
		return nil, err
	}

	var state ProjectState
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Organization{}, "id = ?", orgID).Error; err != nil {
			return notFound(err, "organization %s", orgID)
		}
		var count int64
		if err := tx.Model(&models.Project{}).
			Where("organization_id = ? AND name = ?", orgID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("project %s in %s: %w", name, orgID, revisionerrors.Conflict)
		}

		state.Project = models.Project{ID: uuid.NewString(), OrganizationID: orgID, Name: name}
		if err := tx.Create(&state.Project).Error; err != nil {
			return err
		}
		branch := models.Branch{ID: uuid.NewString(), ProjectID: state.Project.ID, Name: branchName, IsRoot: true}
		if err := tx.Create(&branch).Error; err != nil {
			return err
		}

		head := models.Revision{
			ID:       uuid.NewString(),
			BranchID: branch.ID,
			Sequence: 0,
			IsHead:   true,
			IsStart:  true,
		}
		if err := tx.Create(&head).Error; err != nil {
			return err
		}
		for _, id := range SystemTables {
			table := models.Table{
				VersionID: uuid.NewString(),
				CreatedID: uuid.NewString(),
				TableID:   id,
				System:    true,
				Readonly:  true,
			}
			if err := tx.Create(&table).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.RevisionTable{RevisionID: head.ID, TableVersionID: table.VersionID}).Error; err != nil {
				return err
			}
		}

		draft, err := createDraft(tx, &head)
		if err != nil {
			return err
		}
		state.Root = BranchState{Branch: branch, Head: head, Draft: *draft}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("created project",
		zap.String("org", orgID),
		zap.String("project", state.Project.ID),
		zap.String("branch", state.Root.Branch.ID))
	return &state, nil
}

// createDraft creates the draft child of parent on parent's branch, sharing
// every table version of parent.
func createDraft(tx *gorm.DB, parent *models.Revision) (*models.Revision, error) {
	draft := models.Revision{
		ID:       uuid.NewString(),
		BranchID: parent.BranchID,
		ParentID: &parent.ID,
		Sequence: parent.Sequence + 1,
		IsDraft:  true,
	}
	if err := tx.Create(&draft).Error; err != nil {
		return nil, err
	}
	if err := copyRevisionTables(tx, parent.ID, draft.ID); err != nil {
		return nil, err
	}
	return &draft, nil
}

// CreateBranch creates a branch in a project starting at a committed
// revision of any branch of the same project.
func (s *Service) CreateBranch(ctx context.Context, projectID, name, fromRevisionID string) (*BranchState, error) {
	if err := requireName("branch", name); err != nil {
		return nil, err
	}

	var state BranchState
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var source models.Revision
		if err := tx.First(&source, "id = ?", fromRevisionID).Error; err != nil {
			return notFound(err, "revision %s", fromRevisionID)
		}
		if source.IsDraft {
			return fmt.Errorf("cannot branch from draft %s: %w", source.ID, revisionerrors.Conflict)
		}
		var sourceBranch models.Branch
		if err := tx.First(&sourceBranch, "id = ?", source.BranchID).Error; err != nil {
			return notFound(err, "branch %s", source.BranchID)
		}
		if sourceBranch.ProjectID != projectID {
			return fmt.Errorf("revision %s is not in project %s: %w", source.ID, projectID, revisionerrors.NotFound)
		}
		var count int64
		if err := tx.Model(&models.Branch{}).
			Where("project_id = ? AND name = ?", projectID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("branch %s: %w", name, revisionerrors.Conflict)
		}

		state.Branch = models.Branch{ID: uuid.NewString(), ProjectID: projectID, Name: name}
		if err := tx.Create(&state.Branch).Error; err != nil {
			return err
		}
		state.Head = models.Revision{
			ID:       uuid.NewString(),
			BranchID: state.Branch.ID,
			ParentID: &source.ID,
			Sequence: 0,
			IsHead:   true,
			IsStart:  true,
			Comment:  source.Comment,
		}
		if err := tx.Create(&state.Head).Error; err != nil {
			return err
		}
		if err := copyRevisionTables(tx, source.ID, state.Head.ID); err != nil {
			return err
		}
		draft, err := createDraft(tx, &state.Head)
		if err != nil {
			return err
		}
		state.Draft = *draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("created branch",
		zap.String("project", projectID),
		zap.String("branch", state.Branch.ID),
		zap.String("from", fromRevisionID))
	return &state, nil
}

// GetProject returns a project and its root branch.
func (s *Service) GetProject(ctx context.Context, projectID string) (*ProjectState, error) {
	db := s.read(ctx)
	var state ProjectState
	if err := db.First(&state.Project, "id = ?", projectID).Error; err != nil {
		return nil, notFound(err, "project %s", projectID)
	}
	var root models.Branch
	if err := db.Where("project_id = ? AND is_root = ?", projectID, true).First(&root).Error; err != nil {
		return nil, invariant(err, "project %s has no root branch", projectID)
	}
	branch, err := branchState(db, root)
	if err != nil {
		return nil, err
	}
	state.Root = *branch
	return &state, nil
}

// GetBranch returns a branch with its head and draft.
func (s *Service) GetBranch(ctx context.Context, branchID string) (*BranchState, error) {
	db := s.read(ctx)
	var branch models.Branch
	if err := db.First(&branch, "id = ?", branchID).Error; err != nil {
		return nil, notFound(err, "branch %s", branchID)
	}
	return branchState(db, branch)
}

// ListBranches returns the branches of a project ordered by name.
func (s *Service) ListBranches(ctx context.Context, projectID string) ([]models.Branch, error) {
	db := s.read(ctx)
	if err := db.First(&models.Project{}, "id = ?", projectID).Error; err != nil {
		return nil, notFound(err, "project %s", projectID)
	}
	branches := []models.Branch{}
	err := db.Where("project_id = ?", projectID).Order("name").Find(&branches).Error
	return branches, err
}

// GetBranchHead returns the head revision of a branch.
func (s *Service) GetBranchHead(ctx context.Context, branchID string) (*models.Revision, error) {
	state, err := s.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return &state.Head, nil
}

// GetBranchDraft returns the draft revision of a branch.
func (s *Service) GetBranchDraft(ctx context.Context, branchID string) (*models.Revision, error) {
	state, err := s.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return &state.Draft, nil
}

func branchState(db *gorm.DB, branch models.Branch) (*BranchState, error) {
	state := BranchState{Branch: branch}
	if err := db.Where("branch_id = ? AND is_head = ?", branch.ID, true).First(&state.Head).Error; err != nil {
		return nil, invariant(err, "branch %s has no head", branch.ID)
	}
	if err := db.Where("branch_id = ? AND is_draft = ?", branch.ID, true).First(&state.Draft).Error; err != nil {
		return nil, invariant(err, "branch %s has no draft", branch.ID)
	}
	return &state, nil
}

// invariant turns a missing record that must exist into an InvariantViolation.
func invariant(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", revisionerrors.InvariantViolation, fmt.Sprintf(format, args...))
	}
	return err
}
