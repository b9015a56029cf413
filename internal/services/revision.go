package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/models"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// CommitResult is the branch state after a commit and the endpoints that
// moved to a new revision.
type CommitResult struct {
	Head           models.Revision `json:"head"`
	Draft          models.Revision `json:"draft"`
	MovedEndpoints []string        `json:"movedEndpoints"`
}

// Commit publishes the draft of a branch. The draft becomes the head, the
// old head becomes an ordinary revision and a new draft is created as a
// child of the new head. Endpoints follow their revision role.
func (s *Service) Commit(ctx context.Context, branchID, comment string) (*CommitResult, error) {
	var result CommitResult
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		draft, err := lockDraftOfBranch(tx, branchID)
		if err != nil {
			return err
		}
		if !draft.HasChanges {
			return fmt.Errorf("commit of branch %s: %w", branchID, revisionerrors.NoChanges)
		}
		head, err := headOfBranch(tx, branchID)
		if err != nil {
			return invariant(err, "branch %s has no head", branchID)
		}

		if err := markReadonly(tx, draft.ID); err != nil {
			return err
		}

		if err := transition(ctx, head, EventSupersede); err != nil {
			return err
		}
		if err := tx.Model(head).Update("is_head", false).Error; err != nil {
			return err
		}
		if err := transition(ctx, draft, EventCommit); err != nil {
			return err
		}
		draft.Comment = comment
		if err := tx.Model(draft).Updates(map[string]any{
			"is_draft": false,
			"is_head":  true,
			"comment":  comment,
		}).Error; err != nil {
			return err
		}

		next, err := createDraft(tx, draft)
		if err != nil {
			return err
		}

		moved, err := moveEndpoints(tx, draft.ID, next.ID)
		if err != nil {
			return err
		}
		fromHead, err := moveEndpoints(tx, head.ID, draft.ID)
		if err != nil {
			return err
		}

		result = CommitResult{
			Head:           *draft,
			Draft:          *next,
			MovedEndpoints: append(moved, fromHead...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("committed revision",
		zap.String("branch", branchID),
		zap.String("head", result.Head.ID),
		zap.Int64("sequence", result.Head.Sequence),
		zap.Int("endpoints", len(result.MovedEndpoints)))
	s.notify(ctx, result.MovedEndpoints)
	return &result, nil
}

// Revert drops every change of the draft of a branch by giving it the
// table versions of the head again. Draft private versions are deleted.
func (s *Service) Revert(ctx context.Context, branchID string) (*models.Revision, error) {
	var draft *models.Revision
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if draft, err = lockDraftOfBranch(tx, branchID); err != nil {
			return err
		}
		if !draft.HasChanges {
			return fmt.Errorf("revert of branch %s: %w", branchID, revisionerrors.NoChanges)
		}
		head, err := headOfBranch(tx, branchID)
		if err != nil {
			return invariant(err, "branch %s has no head", branchID)
		}

		if err := tx.Where("revision_id = ?", draft.ID).Delete(&models.RevisionTable{}).Error; err != nil {
			return err
		}
		if err := copyRevisionTables(tx, head.ID, draft.ID); err != nil {
			return err
		}
		draft.HasChanges = false
		if err := tx.Model(draft).Update("has_changes", false).Error; err != nil {
			return err
		}
		return cleanupOrphans(tx)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("reverted draft", zap.String("branch", branchID), zap.String("draft", draft.ID))
	return draft, nil
}

// GetRevision returns a revision.
func (s *Service) GetRevision(ctx context.Context, revisionID string) (*models.Revision, error) {
	var rev models.Revision
	if err := s.read(ctx).First(&rev, "id = ?", revisionID).Error; err != nil {
		return nil, notFound(err, "revision %s", revisionID)
	}
	return &rev, nil
}

// ListRevisions returns the revisions of a branch by ascending sequence.
func (s *Service) ListRevisions(ctx context.Context, branchID string, req utils.PageRequest) (utils.Page[models.Revision], error) {
	db := s.read(ctx)
	if err := db.First(&models.Branch{}, "id = ?", branchID).Error; err != nil {
		return utils.Page[models.Revision]{}, notFound(err, "branch %s", branchID)
	}
	return fetchPage(db.Model(&models.Revision{}).Where("branch_id = ?", branchID), keyed[models.Revision]{
		name:   "list_revisions",
		column: "sequence",
		key: func(r models.Revision) string {
			return strconv.FormatInt(r.Sequence, 10)
		},
		parse: func(after string) (any, error) {
			return strconv.ParseInt(after, 10, 64)
		},
	}, req)
}

// mutateDraft runs fn against a locked draft and recomputes its changes
// flag afterwards.
func (s *Service) mutateDraft(ctx context.Context, revisionID string, fn func(tx *gorm.DB, draft *models.Revision) error) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		draft, err := lockDraft(tx, revisionID)
		if err != nil {
			return err
		}
		if err := fn(tx, draft); err != nil {
			return err
		}
		return recomputeHasChanges(tx, draft)
	})
}
