package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diskwise/internal/model"
)

// maxSimilarMemories bounds similarity lookups.
const maxSimilarMemories = 10

// SaveMemory appends a memory record. The store is append-only: existing
// memories are never updated, corrections arrive as new rows.
func (s *SQLiteStorage) SaveMemory(ctx context.Context, mem *model.Memory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMemory(mem); err != nil {
		return err
	}

	if mem.ID == "" {
		mem.ID = uuid.NewString()
	}
	if mem.Timestamp.IsZero() {
		mem.Timestamp = time.Now()
	}

	metadata, err := json.Marshal(mem.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (
			id, type, context, decision, user_agreed, model_confidence,
			metadata, timestamp, publisher, category, cluster_type, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		mem.ID,
		string(mem.Type),
		mem.Context,
		mem.Decision,
		mem.UserAgreed,
		mem.ModelConfidence,
		string(metadata),
		mem.Timestamp,
		mem.Metadata[model.MetaPublisher],
		mem.Metadata[model.MetaCategory],
		mem.Metadata[model.MetaClusterType],
		mem.Metadata[model.MetaSessionID],
	)
	if err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}

	return nil
}

// FindSimilarMemories returns memories matching any populated key field,
// most recent first, bounded to maxSimilarMemories. Category matching is
// loose: any memory whose category shares the key's category as a substring
// (either direction) qualifies, so near-miss labels are not dropped.
func (s *SQLiteStorage) FindSimilarMemories(ctx context.Context, key model.MemoryKey) ([]model.Memory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if key.Publisher == "" && key.Category == "" && key.ClusterType == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, context, decision, user_agreed, model_confidence, metadata, timestamp
		FROM memories
		WHERE (? != '' AND publisher = ? COLLATE NOCASE)
		   OR (? != '' AND (instr(lower(category), lower(?)) > 0 OR instr(lower(?), lower(category)) > 0) AND category != '')
		   OR (? != '' AND cluster_type = ? COLLATE NOCASE)
		ORDER BY timestamp DESC
		LIMIT ?
	`,
		key.Publisher, key.Publisher,
		key.Category, key.Category, key.Category,
		key.ClusterType, key.ClusterType,
		maxSimilarMemories,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []model.Memory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	return memories, rows.Err()
}

// GetPattern derives the aggregate removal pattern for a key (publisher or
// category). Patterns are never persisted: they are recomputed from the
// current memories on every call, so they are consistent by construction.
func (s *SQLiteStorage) GetPattern(ctx context.Context, key string) (*model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT decision FROM memories
		WHERE publisher = ? COLLATE NOCASE OR category = ? COLLATE NOCASE
		ORDER BY timestamp ASC
	`, key, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pattern := &model.Pattern{Key: key}
	decisionCounts := make(map[string]int)
	var firstSeen []string

	for rows.Next() {
		var decision string
		if err := rows.Scan(&decision); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		pattern.Total++
		if isAffirmative(decision) {
			pattern.Removals++
		}
		if decisionCounts[decision] == 0 {
			firstSeen = append(firstSeen, decision)
		}
		decisionCounts[decision]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pattern.Total > 0 {
		pattern.Rate = float64(pattern.Removals) / float64(pattern.Total)
	}
	pattern.PreferredValue = majorityValue(decisionCounts, firstSeen)

	return pattern, nil
}

// GetRelocationPattern derives the relocation pattern for a cluster type,
// with PreferredValue set to the most frequent target drive among approvals.
// Exact ties keep the first-seen drive.
func (s *SQLiteStorage) GetRelocationPattern(ctx context.Context, clusterType string) (*model.Pattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(clusterType, "clusterType"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT decision, user_agreed, metadata FROM memories
		WHERE type = ? AND cluster_type = ? COLLATE NOCASE
		ORDER BY timestamp ASC
	`, string(model.MemoryRelocation), clusterType)
	if err != nil {
		return nil, fmt.Errorf("failed to query relocation memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pattern := &model.Pattern{Key: clusterType}
	driveCounts := make(map[string]int)
	var firstSeen []string

	for rows.Next() {
		var decision, metadata string
		var agreed bool
		if err := rows.Scan(&decision, &agreed, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan relocation memory: %w", err)
		}
		pattern.Total++
		if !isAffirmative(decision) {
			continue
		}
		pattern.Removals++

		var meta map[string]string
		if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
			continue
		}
		drive := meta[model.MetaTargetDrive]
		if drive == "" {
			continue
		}
		if driveCounts[drive] == 0 {
			firstSeen = append(firstSeen, drive)
		}
		driveCounts[drive]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pattern.Total > 0 {
		pattern.Rate = float64(pattern.Removals) / float64(pattern.Total)
	}
	pattern.PreferredValue = majorityValue(driveCounts, firstSeen)

	return pattern, nil
}

// GetLearningStats summarizes the memory store. With zero memories the
// accuracy rate reports the fixed baseline instead of zero, so an empty
// store is not mistaken for evidence of poor performance.
func (s *SQLiteStorage) GetLearningStats(ctx context.Context) (*model.LearningStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*), SUM(CASE WHEN user_agreed THEN 1 ELSE 0 END)
		FROM memories GROUP BY type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.LearningStats{
		CountByType: make(map[model.MemoryType]int),
	}

	for rows.Next() {
		var memType string
		var count, agreed int
		if err := rows.Scan(&memType, &count, &agreed); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.CountByType[model.MemoryType(memType)] = count
		stats.TotalMemories += count
		stats.AgreedCount += agreed
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalMemories == 0 {
		stats.AccuracyRate = model.BaselineAccuracy
	} else {
		stats.AccuracyRate = float64(stats.AgreedCount) / float64(stats.TotalMemories)
	}

	return stats, nil
}

// PurgeSessionMemories deletes the memories recorded for one session. This
// is the only deletion path the store offers.
func (s *SQLiteStorage) PurgeSessionMemories(ctx context.Context, sessionID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge session memories: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged memories: %w", err)
	}
	return int(n), nil
}

func scanMemory(row rowScanner) (model.Memory, error) {
	var (
		mem      model.Memory
		memType  string
		metadata string
	)

	err := row.Scan(&mem.ID, &memType, &mem.Context, &mem.Decision,
		&mem.UserAgreed, &mem.ModelConfidence, &metadata, &mem.Timestamp)
	if err != nil {
		return model.Memory{}, fmt.Errorf("failed to scan memory: %w", err)
	}

	mem.Type = model.MemoryType(memType)
	if err := json.Unmarshal([]byte(metadata), &mem.Metadata); err != nil {
		return model.Memory{}, fmt.Errorf("failed to unmarshal memory metadata: %w", err)
	}

	return mem, nil
}

// isAffirmative reports whether a recorded decision string represents a
// remove/relocate outcome.
func isAffirmative(decision string) bool {
	switch decision {
	case "remove", "removed", "relocate", "relocated", "clean", "cleaned", "delete", "deleted", "approve", "approved":
		return true
	default:
		return false
	}
}

// majorityValue picks the most frequent value; exact ties are broken by
// first-seen order.
func majorityValue(counts map[string]int, firstSeen []string) string {
	best := ""
	bestCount := 0
	for _, v := range firstSeen {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
