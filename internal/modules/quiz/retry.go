package quiz

import (
	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/data/repos"
	types "github.com/aryansondharva/Aura/internal/domain"
	"github.com/aryansondharva/Aura/internal/platform/dbctx"
)

// retryQuestions returns up to limit questions answered wrong in the owner's most recent
// attempt on the topic. Older attempts are not consulted.
func retryQuestions(dbc dbctx.Context, attempts repos.AttemptRepo, questions repos.QuestionRepo, ownerID, topicID uuid.UUID, limit int) ([]*types.Question, error) {
	latest, err := attempts.GetLatestWithAnswers(dbc, ownerID, topicID)
	if err != nil || latest == nil {
		return nil, err
	}
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, a := range latest.Answers {
		if a == nil || a.IsCorrect || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		ids = append(ids, a.QuestionID)
		if len(ids) == limit {
			break
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := questions.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(rows))
	for _, q := range rows {
		if q != nil && q.TopicID == topicID && q.OwnerID == ownerID {
			byID[q.ID] = q
		}
	}
	out := make([]*types.Question, 0, len(ids))
	for _, id := range ids {
		if q := byID[id]; q != nil {
			out = append(out, q)
		}
	}
	return out, nil
}
