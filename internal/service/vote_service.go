package service

import (
	"context"
	"errors"
	"fmt"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
)

// VoteService records one vote per (user, post) and keeps poll counters
// consistent with the votes table.
type VoteService interface {
	Vote(ctx context.Context, actor domain.Actor, postID, optionID string) (*domain.VoteOutcome, error)
	RemoveVote(ctx context.Context, actor domain.Actor, postID string) (*domain.Poll, error)
}

type voteService struct {
	postRepo  domain.PostRepository
	voteRepo  domain.VoteRepository
	gates     GateService
	txManager domain.TransactionManager
	clock     Clock
}

func NewVoteService(
	postRepo domain.PostRepository,
	voteRepo domain.VoteRepository,
	gates GateService,
	txManager domain.TransactionManager,
	clock Clock,
) VoteService {
	if clock == nil {
		clock = SystemClock()
	}
	return &voteService{
		postRepo:  postRepo,
		voteRepo:  voteRepo,
		gates:     gates,
		txManager: txManager,
		clock:     clock,
	}
}

func (s *voteService) loadPoll(ctx context.Context, postID string) (*domain.Post, *domain.Poll, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, domain.NewInternalError("Failed to get post", err)
	}
	if post == nil {
		return nil, nil, domain.NewNotFoundError(fmt.Sprintf("post %s not found", postID))
	}
	if post.Poll == nil {
		return nil, nil, domain.NewInvalidInputError("post does not have a poll")
	}
	return post, post.Poll, nil
}

// checkVotePermitted runs every precondition that does not need the poll lock.
func (s *voteService) checkVotePermitted(ctx context.Context, actor domain.Actor, post *domain.Post, poll *domain.Poll, optionID string) error {
	if poll.Option(optionID) == nil {
		return domain.NewInvalidInputError("option does not belong to this poll")
	}
	if poll.HasEnded(s.clock.Now()) {
		return domain.NewForbiddenError("poll has ended")
	}

	ok, err := s.gates.MeetsQuizRequirement(ctx, actor.UserID, poll.RequiredDifficulty)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewForbiddenError(fmt.Sprintf("Complete a %s level quiz or higher to vote", *poll.RequiredDifficulty))
	}

	decision, err := s.gates.MeetsPostQuizGate(ctx, actor.UserID, post)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return domain.NewForbiddenError(decision.Message)
	}
	return nil
}

func (s *voteService) Vote(ctx context.Context, actor domain.Actor, postID, optionID string) (*domain.VoteOutcome, error) {
	post, poll, err := s.loadPoll(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVotePermitted(ctx, actor, post, poll, optionID); err != nil {
		return nil, err
	}

	outcome := &domain.VoteOutcome{SelectedOptionID: optionID}
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.voteRepo.LockPoll(ctx, poll.ID)
		if err != nil {
			return domain.NewInternalError("Failed to lock poll", err)
		}
		if locked == nil {
			return domain.NewNotFoundError("poll not found")
		}

		existing, err := s.voteRepo.FindVote(ctx, actor.UserID, postID)
		if err != nil {
			return domain.NewInternalError("Failed to read vote", err)
		}

		now := s.clock.Now()
		switch {
		case existing != nil && existing.OptionID == optionID:
			outcome.Changed = false
		case existing != nil:
			if err := s.voteRepo.AdjustOptionVotes(ctx, existing.OptionID, -1); err != nil {
				return domain.NewInternalError("Failed to update vote counts", err)
			}
			if err := s.voteRepo.UpdateVoteOption(ctx, existing.ID, optionID, now); err != nil {
				return domain.NewInternalError("Failed to update vote", err)
			}
			if err := s.voteRepo.AdjustOptionVotes(ctx, optionID, 1); err != nil {
				return domain.NewInternalError("Failed to update vote counts", err)
			}
			outcome.Changed = true
		default:
			vote := &domain.Vote{UserID: actor.UserID, PostID: postID, OptionID: optionID, CreatedAt: now, UpdatedAt: now}
			if err := s.voteRepo.InsertVote(ctx, vote); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return domain.NewConflictError("vote already recorded")
				}
				return domain.NewInternalError("Failed to record vote", err)
			}
			if err := s.voteRepo.AdjustOptionVotes(ctx, optionID, 1); err != nil {
				return domain.NewInternalError("Failed to update vote counts", err)
			}
			if err := s.voteRepo.AdjustTotalVotes(ctx, poll.ID, 1); err != nil {
				return domain.NewInternalError("Failed to update vote counts", err)
			}
			outcome.Changed = true
		}

		current, err := s.voteRepo.GetPoll(ctx, poll.ID)
		if err != nil {
			return domain.NewInternalError("Failed to reload poll", err)
		}
		if current == nil {
			return domain.NewNotFoundError("poll not found")
		}
		outcome.Poll = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Changed {
		logger.Get().Info("Vote recorded",
			zap.String("postID", postID),
			zap.String("userID", actor.UserID),
			zap.String("optionID", optionID),
		)
	}
	return outcome, nil
}

func (s *voteService) RemoveVote(ctx context.Context, actor domain.Actor, postID string) (*domain.Poll, error) {
	_, poll, err := s.loadPoll(ctx, postID)
	if err != nil {
		return nil, err
	}

	var result *domain.Poll
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.voteRepo.LockPoll(ctx, poll.ID)
		if err != nil {
			return domain.NewInternalError("Failed to lock poll", err)
		}
		if locked == nil {
			return domain.NewNotFoundError("poll not found")
		}

		existing, err := s.voteRepo.FindVote(ctx, actor.UserID, postID)
		if err != nil {
			return domain.NewInternalError("Failed to read vote", err)
		}
		if existing == nil {
			return domain.NewNotFoundError("no vote found")
		}

		if err := s.voteRepo.DeleteVote(ctx, existing.ID); err != nil {
			return domain.NewInternalError("Failed to remove vote", err)
		}
		if err := s.voteRepo.AdjustOptionVotes(ctx, existing.OptionID, -1); err != nil {
			return domain.NewInternalError("Failed to update vote counts", err)
		}
		if err := s.voteRepo.AdjustTotalVotes(ctx, poll.ID, -1); err != nil {
			return domain.NewInternalError("Failed to update vote counts", err)
		}

		result, err = s.voteRepo.GetPoll(ctx, poll.ID)
		if err != nil {
			return domain.NewInternalError("Failed to reload poll", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
