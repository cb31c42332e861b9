package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/parikshasetu/api/model"
	"github.com/parikshasetu/api/utils/cache"
	"gorm.io/gorm"
)

// rankUpdateBatchSize bounds how many rank assignments are written per
// statement during recomputation, keeping memory O(batch) for attempt
// populations in the thousands
const rankUpdateBatchSize = 500

// leaderboardCacheTTL is deliberately short: ranks are eventually
// consistent and the cache only smooths read bursts between recomputes
const leaderboardCacheTTL = 30 * time.Second

// ScoreBreakdown is the per-attempt scoring result
type ScoreBreakdown struct {
	Score        float64
	CorrectCount int
	WrongCount   int
	SkippedCount int
	Accuracy     float64
}

// ScoreAnswers computes the marks for one answer map against a finalized
// question set. Unattempted questions change nothing; a correct attempt
// earns marksPerQuestion; a wrong one deducts negativeMarking. Letters
// outside A-D are participant noise and count as unattempted. The final
// score is floored at zero and rounded to two decimals.
func ScoreAnswers(questions []model.MergedQuestion, answers map[int]string, marksPerQuestion, negativeMarking float64) ScoreBreakdown {
	var result ScoreBreakdown

	for _, q := range questions {
		chosen, ok := answers[q.Number]
		if !ok || !isValidLetter(chosen) {
			result.SkippedCount++
			continue
		}
		if strings.EqualFold(chosen, q.CorrectAnswer) {
			result.CorrectCount++
			result.Score += marksPerQuestion
		} else {
			result.WrongCount++
			result.Score -= negativeMarking
		}
	}

	if result.Score < 0 {
		result.Score = 0
	}
	result.Score = round2(result.Score)

	attempted := result.CorrectCount + result.WrongCount
	if attempted > 0 {
		result.Accuracy = round2(float64(result.CorrectCount) / float64(attempted) * 100)
	}

	return result
}

func isValidLetter(letter string) bool {
	switch strings.ToUpper(letter) {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoringService scores submissions and maintains per-test rankings
type ScoringService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewScoringService creates a new scoring service. The cache is optional;
// without it leaderboard reads always hit the database.
func NewScoringService(db *gorm.DB, redisCache *cache.RedisCache) *ScoringService {
	return &ScoringService{db: db, cache: redisCache}
}

// StartAttempt registers a participant on a test inside its schedule
// window. Starting twice returns the existing attempt unchanged.
func (s *ScoringService) StartAttempt(ctx context.Context, userID, testID uint) (*model.Attempt, error) {
	var test model.Test
	if err := s.db.WithContext(ctx).First(&test, testID).Error; err != nil {
		return nil, fmt.Errorf("test not found: %w", err)
	}
	if err := checkWindow(&test, time.Now()); err != nil {
		return nil, err
	}

	var existing model.Attempt
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	attempt := &model.Attempt{
		UserID:    userID,
		TestID:    testID,
		Status:    model.AttemptStarted,
		StartedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	return attempt, nil
}

// SubmitAttempt finalizes a participant's attempt: scores the answer map,
// persists the terminal record and triggers an asynchronous rank
// recomputation. A second submission is rejected with the original result.
func (s *ScoringService) SubmitAttempt(ctx context.Context, userID, testID uint, answers map[int]string, timeTaken int) (*model.AttemptResultResponse, error) {
	var test model.Test
	if err := s.db.WithContext(ctx).First(&test, testID).Error; err != nil {
		return nil, fmt.Errorf("test not found: %w", err)
	}
	if err := checkWindow(&test, time.Now()); err != nil {
		return nil, err
	}

	var attempt model.Attempt
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&attempt).Error
	if err == gorm.ErrRecordNotFound {
		// Participant submitted without an explicit start; register the
		// attempt now so the uniqueness constraint still applies
		attempt = model.Attempt{
			UserID:    userID,
			TestID:    testID,
			Status:    model.AttemptStarted,
			StartedAt: time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&attempt).Error; err != nil {
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptSubmitted {
		topScore, _ := s.TopScore(ctx, testID)
		return attempt.ToResult(topScore, test.TotalMarks), ErrDuplicateSubmission
	}

	questions, err := test.DecodeQuestions()
	if err != nil {
		return nil, fmt.Errorf("failed to decode test questions: %w", err)
	}

	breakdown := ScoreAnswers(questions, answers, test.MarksPerQuestion, test.NegativeMarking)

	now := time.Now()
	attempt.Status = model.AttemptSubmitted
	attempt.Score = breakdown.Score
	attempt.CorrectCount = breakdown.CorrectCount
	attempt.WrongCount = breakdown.WrongCount
	attempt.SkippedCount = breakdown.SkippedCount
	attempt.Accuracy = breakdown.Accuracy
	attempt.TimeTaken = timeTaken
	attempt.SubmittedAt = &now
	if err := attempt.EncodeAnswers(answers); err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	// The terminal write is conditional on the attempt still being in the
	// started state, so two racing submits cannot both land: the loser's
	// UPDATE matches zero rows and the winner's record stays untouched.
	res := s.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, model.AttemptStarted).
		Updates(map[string]interface{}{
			"status":        model.AttemptSubmitted,
			"score":         breakdown.Score,
			"correct_count": breakdown.CorrectCount,
			"wrong_count":   breakdown.WrongCount,
			"skipped_count": breakdown.SkippedCount,
			"accuracy":      breakdown.Accuracy,
			"time_taken":    timeTaken,
			"submitted_at":  now,
			"answers":       attempt.Answers,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// lost a concurrent submit; return the stored result
		if err := s.db.WithContext(ctx).First(&attempt, attempt.ID).Error; err != nil {
			return nil, err
		}
		topScore, _ := s.TopScore(ctx, testID)
		return attempt.ToResult(topScore, test.TotalMarks), ErrDuplicateSubmission
	}

	// Rank is advisory and eventually consistent: recompute out of band.
	// Overlapping recomputes each derive a full, valid snapshot, so a
	// late-finishing run harmlessly overwrites with an equivalent one.
	go func() {
		if err := s.RecomputeRanks(context.Background(), testID); err != nil {
			log.Printf("ScoringService: Background rank recompute failed for test %d: %v", testID, err)
		}
	}()

	topScore, _ := s.TopScore(ctx, testID)
	if breakdown.Score > topScore {
		topScore = breakdown.Score
	}

	result := attempt.ToResult(topScore, test.TotalMarks)
	if result.Rank == 0 {
		// the background recompute has not landed yet; estimate the rank
		// from the current population so the response is immediately useful
		var better int64
		countErr := s.db.WithContext(ctx).
			Model(&model.Attempt{}).
			Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
			Where(
				"(score > ?) OR (score = ? AND time_taken < ?) OR (score = ? AND time_taken = ? AND submitted_at < ?)",
				attempt.Score, attempt.Score, attempt.TimeTaken, attempt.Score, attempt.TimeTaken, now,
			).
			Count(&better).Error
		if countErr == nil {
			result.Rank = int(better) + 1
		}
	}
	return result, nil
}

// checkWindow validates an action against the test's schedule window
func checkWindow(test *model.Test, at time.Time) error {
	if at.Before(test.StartTime) {
		return &WindowViolationError{Boundary: test.StartTime, Before: true}
	}
	if at.After(test.EndTime) {
		return &WindowViolationError{Boundary: test.EndTime}
	}
	return nil
}

// RecomputeRanks derives a fresh dense ranking for all submitted attempts
// of a test, ordered by score desc, time taken asc, submission time asc.
// Attempts are streamed in sorted order and updates applied in bounded
// batches so memory stays O(batch) even for thousands of attempts.
func (s *ScoringService) RecomputeRanks(ctx context.Context, testID uint) error {
	rows, err := s.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Select("id").
		Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
		Order("score DESC, time_taken ASC, submitted_at ASC").
		Rows()
	if err != nil {
		return fmt.Errorf("failed to stream attempts: %w", err)
	}
	defer rows.Close()

	rank := 0
	batchIDs := make([]uint, 0, rankUpdateBatchSize)
	batchRanks := make([]int, 0, rankUpdateBatchSize)

	flush := func() error {
		if len(batchIDs) == 0 {
			return nil
		}
		if err := s.writeRankBatch(ctx, batchIDs, batchRanks); err != nil {
			return err
		}
		batchIDs = batchIDs[:0]
		batchRanks = batchRanks[:0]
		return nil
	}

	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan attempt id: %w", err)
		}
		rank++
		batchIDs = append(batchIDs, id)
		batchRanks = append(batchRanks, rank)
		if len(batchIDs) >= rankUpdateBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	s.invalidateLeaderboard(ctx, testID)

	log.Printf("ScoringService: Recomputed ranks for test %d (%d attempts)", testID, rank)
	return nil
}

// writeRankBatch applies one bounded batch of rank assignments with a
// single CASE update. Writes are idempotent per rank value.
func (s *ScoringService) writeRankBatch(ctx context.Context, ids []uint, ranks []int) error {
	var sb strings.Builder
	args := make([]interface{}, 0, len(ids)*2+len(ids))

	sb.WriteString("UPDATE attempts SET rank = CASE id ")
	for i, id := range ids {
		sb.WriteString("WHEN ? THEN ? ")
		args = append(args, id, ranks[i])
	}
	sb.WriteString("END WHERE id IN (")
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, id)
	}
	sb.WriteString(")")

	return s.db.WithContext(ctx).Exec(sb.String(), args...).Error
}

// TopScore returns the highest submitted score for a test, cached briefly
func (s *ScoringService) TopScore(ctx context.Context, testID uint) (float64, error) {
	cacheKey := fmt.Sprintf("test:%d:top_score", testID)
	if s.cache != nil {
		var cached float64
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var topScore float64
	err := s.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
		Select("COALESCE(MAX(score), 0)").
		Scan(&topScore).Error
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, topScore, leaderboardCacheTTL)
	}
	return topScore, nil
}

// GetLeaderboard returns one page of the ranked attempt population
func (s *ScoringService) GetLeaderboard(ctx context.Context, testID uint, page, perPage int) (*model.LeaderboardResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	cacheKey := fmt.Sprintf("test:%d:leaderboard:%d:%d", testID, page, perPage)
	if s.cache != nil {
		var cached model.LeaderboardResponse
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
		Count(&total).Error; err != nil {
		return nil, err
	}

	// Order by the canonical chain rather than the stored rank: a freshly
	// submitted attempt carries rank 0 until the background recompute
	// lands, and under "rank ASC" it would float above rank 1.
	var attempts []model.Attempt
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
		Order("score DESC, time_taken ASC, submitted_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	topScore, err := s.TopScore(ctx, testID)
	if err != nil {
		return nil, err
	}

	resp := &model.LeaderboardResponse{
		TestID:   testID,
		Total:    total,
		TopScore: topScore,
	}
	for i, a := range attempts {
		entry := model.LeaderboardEntry{
			Rank:      a.Rank,
			UserID:    a.UserID,
			Score:     a.Score,
			Accuracy:  a.Accuracy,
			TimeTaken: a.TimeTaken,
		}
		if entry.Rank == 0 {
			// recompute has not landed yet; the page position under the
			// canonical ordering is the rank it will receive
			entry.Rank = (page-1)*perPage + i + 1
		}
		if a.SubmittedAt != nil {
			entry.SubmittedAt = *a.SubmittedAt
		}
		resp.Entries = append(resp.Entries, entry)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, resp, leaderboardCacheTTL)
	}
	return resp, nil
}

// GetAttemptResult returns a participant's finalized result
func (s *ScoringService) GetAttemptResult(ctx context.Context, userID, testID uint) (*model.AttemptResultResponse, error) {
	var test model.Test
	if err := s.db.WithContext(ctx).First(&test, testID).Error; err != nil {
		return nil, fmt.Errorf("test not found: %w", err)
	}

	var attempt model.Attempt
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&attempt).Error; err != nil {
		return nil, err
	}

	topScore, err := s.TopScore(ctx, testID)
	if err != nil {
		return nil, err
	}
	return attempt.ToResult(topScore, test.TotalMarks), nil
}

// invalidateLeaderboard drops cached leaderboard pages and top score after
// a rank recompute
func (s *ScoringService) invalidateLeaderboard(ctx context.Context, testID uint) {
	if s.cache == nil {
		return
	}
	keys, err := s.cache.Keys(ctx, fmt.Sprintf("test:%d:leaderboard:*", testID))
	if err == nil && len(keys) > 0 {
		_ = s.cache.Delete(ctx, keys...)
	}
	_ = s.cache.Delete(ctx, fmt.Sprintf("test:%d:top_score", testID))
}
