package repository

import (
	"database/sql"

	"votist/internal/domain"
	"votist/internal/logger"
	"votist/internal/repository/models"
	"votist/internal/util"

	"go.uber.org/zap"
)

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		FirstName:  m.FirstName.String,
		LastName:   m.LastName.String,
		AvatarURL:  m.AvatarURL.String,
		IsAdmin:    m.IsAdmin,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		FirstName:  util.StringToNullString(u.FirstName),
		LastName:   util.StringToNullString(u.LastName),
		AvatarURL:  util.StringToNullString(u.AvatarURL),
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description.String,
		Difficulty:     domain.Difficulty(m.Difficulty),
		PassingScore:   m.PassingScore,
		Enabled:        m.Enabled,
		Sequence:       m.Sequence,
		PrerequisiteID: util.NullStringToPtr(m.PrerequisiteID),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toDomainQuizzes(rows []models.Quiz) []domain.Quiz {
	quizzes := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, *toDomainQuiz(&rows[i]))
	}
	return quizzes
}

func toDomainProgress(m *models.UserProgress) *domain.UserProgress {
	if m == nil {
		return nil
	}
	return &domain.UserProgress{
		UserID:      m.UserID,
		QuizID:      m.QuizID,
		Status:      domain.ProgressStatus(m.Status),
		Score:       m.Score,
		IsCompleted: m.IsCompleted,
		CompletedAt: util.NullTimeToPtr(m.CompletedAt),
		StartedAt:   util.NullTimeToPtr(m.StartedAt),
		Answers:     []byte(m.Answers),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainProgress(p *domain.UserProgress) *models.UserProgress {
	if p == nil {
		return nil
	}
	return &models.UserProgress{
		UserID:      p.UserID,
		QuizID:      p.QuizID,
		Status:      string(p.Status),
		Score:       p.Score,
		IsCompleted: p.IsCompleted,
		CompletedAt: util.PtrToNullTime(p.CompletedAt),
		StartedAt:   util.PtrToNullTime(p.StartedAt),
		Answers:     models.JSONDocument(p.Answers),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomainProgressEntry(m *models.ProgressWithQuiz) domain.ProgressEntry {
	return domain.ProgressEntry{
		Progress: *toDomainProgress(&m.UserProgress),
		Quiz: domain.Quiz{
			ID:             m.QuizID,
			Title:          m.QuizTitle,
			Description:    m.QuizDescription.String,
			Difficulty:     domain.Difficulty(m.QuizDifficulty),
			PassingScore:   m.QuizPassingScore,
			Enabled:        m.QuizEnabled,
			Sequence:       m.QuizSequence,
			PrerequisiteID: util.NullStringToPtr(m.QuizPrerequisiteID),
		},
	}
}

func nullDifficulty(d *domain.Difficulty) sql.NullInt16 {
	if d == nil {
		return sql.NullInt16{}
	}
	return sql.NullInt16{Int16: int16(*d), Valid: true}
}

func difficultyPtr(n sql.NullInt16) *domain.Difficulty {
	if !n.Valid {
		return nil
	}
	d := domain.Difficulty(n.Int16)
	return &d
}

// toDomainPost decodes the gate columns. A malformed gate is logged and
// treated as no gate.
func toDomainPost(m *models.Post) *domain.Post {
	if m == nil {
		return nil
	}
	gate, err := domain.DecodeQuizGate(m.QuizGateType, difficultyPtr(m.QuizGateDifficulty), util.NullStringToPtr(m.QuizGateQuizID))
	if err != nil {
		logger.Get().Warn("Post has an unusable quiz gate, treating it as open",
			zap.String("postID", m.ID),
			zap.String("gateType", m.QuizGateType),
			zap.Error(err),
		)
	}
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &domain.Post{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Title:     m.Title,
		Content:   m.Content,
		Category:  m.Category,
		Tags:      tags,
		Likes:     m.Likes,
		Gate:      gate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainPost(p *domain.Post) *models.Post {
	if p == nil {
		return nil
	}
	gateType, gateDifficulty, gateQuizID := domain.EncodeQuizGate(p.QuizGate())
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Post{
		ID:                 p.ID,
		AuthorID:           p.AuthorID,
		Title:              p.Title,
		Content:            p.Content,
		Category:           p.Category,
		Tags:               tags,
		Likes:              p.Likes,
		QuizGateType:       string(gateType),
		QuizGateDifficulty: nullDifficulty(gateDifficulty),
		QuizGateQuizID:     util.PtrToNullString(gateQuizID),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toDomainPoll(m *models.Poll, options []models.PollOption) *domain.Poll {
	if m == nil {
		return nil
	}
	poll := &domain.Poll{
		ID:                 m.ID,
		PostID:             m.PostID,
		Question:           m.Question,
		EndsAt:             util.NullTimeToPtr(m.EndsAt),
		TotalVotes:         m.TotalVotes,
		RequiredDifficulty: difficultyPtr(m.RequiredDifficulty),
		Options:            make([]domain.PollOption, 0, len(options)),
	}
	for _, o := range options {
		poll.Options = append(poll.Options, domain.PollOption{
			ID:       o.ID,
			PollID:   o.PollID,
			Text:     o.Text,
			Position: o.Position,
			Votes:    o.Votes,
		})
	}
	return poll
}

func toDomainVote(m *models.Vote) *domain.Vote {
	if m == nil {
		return nil
	}
	return &domain.Vote{
		ID:        m.ID,
		UserID:    m.UserID,
		PostID:    m.PostID,
		OptionID:  m.OptionID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainComment(m *models.Comment) *domain.Comment {
	if m == nil {
		return nil
	}
	return &domain.Comment{
		ID:            m.ID,
		PostID:        m.PostID,
		AuthorID:      m.AuthorID,
		ParentID:      util.NullStringToPtr(m.ParentID),
		RootCommentID: util.NullStringToPtr(m.RootCommentID),
		Content:       m.Content,
		Likes:         m.Likes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toDomainCommentWithAuthor(m *models.CommentWithAuthor) domain.Comment {
	c := toDomainComment(&m.Comment)
	c.Author = &domain.Author{
		ID:        m.AuthorID,
		FirstName: m.AuthorFirstName.String,
		LastName:  m.AuthorLastName.String,
		AvatarURL: m.AuthorAvatarURL.String,
		IsAdmin:   m.AuthorIsAdmin,
	}
	return *c
}
