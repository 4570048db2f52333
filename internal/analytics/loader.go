package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MentionFile is the structured product-mention document produced by the
// video understanding pipeline.
type MentionFile struct {
	VideoID string         `json:"video_id"`
	Scenes  []MentionScene `json:"scenes"`
}

// MentionScene is one scene and the products mentioned in it.
type MentionScene struct {
	SceneID         string           `json:"scene_id"`
	TimestampRange  []float64        `json:"timestamp_range"`
	ProductMentions []ProductMention `json:"product_mentions"`
}

// ProductMention is a single product seen or heard in a scene.
type ProductMention struct {
	ProductName *string   `json:"product_name"`
	Brand       *string   `json:"brand"`
	Category    *string   `json:"category"`
	Confidence  *float64  `json:"confidence"`
	Evidence    *Evidence `json:"evidence"`
}

// Evidence explains where a mention came from.
type Evidence struct {
	Visual   *string `json:"visual"`
	Dialogue *string `json:"dialogue"`
}

// SceneRow is a row of video_scenes. ProductMentions is the raw JSON array.
type SceneRow struct {
	VideoID         string
	SceneID         string
	SceneStart      *float64
	SceneEnd        *float64
	ProductMentions string
	SourceFile      string
}

// MentionRow is a row of product_mentions.
type MentionRow struct {
	VideoID          string
	SceneID          string
	SceneStart       *float64
	SceneEnd         *float64
	ProductName      *string
	Brand            *string
	Category         *string
	Confidence       *float64
	EvidenceVisual   *string
	EvidenceDialogue *string
	SourceFile       string
}

// ReadMentionFile decodes a product-mention document from disk.
func ReadMentionFile(path string) (MentionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MentionFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	var f MentionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return MentionFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return f, nil
}

func sceneBounds(tr []float64) (start, end *float64) {
	if len(tr) > 0 {
		v := tr[0]
		start = &v
	}
	if len(tr) > 1 {
		v := tr[1]
		end = &v
	}
	return start, end
}

// BuildSceneRows returns one video_scenes row per scene.
func BuildSceneRows(f MentionFile, sourceFile string) ([]SceneRow, error) {
	rows := make([]SceneRow, 0, len(f.Scenes))
	for _, sc := range f.Scenes {
		mentions := sc.ProductMentions
		if mentions == nil {
			mentions = []ProductMention{}
		}
		raw, err := json.Marshal(mentions)
		if err != nil {
			return nil, fmt.Errorf("encode mentions for scene %s: %w", sc.SceneID, err)
		}
		start, end := sceneBounds(sc.TimestampRange)
		rows = append(rows, SceneRow{
			VideoID:         f.VideoID,
			SceneID:         sc.SceneID,
			SceneStart:      start,
			SceneEnd:        end,
			ProductMentions: string(raw),
			SourceFile:      sourceFile,
		})
	}
	return rows, nil
}

// BuildMentionRows returns one product_mentions row per mention.
func BuildMentionRows(f MentionFile, sourceFile string) []MentionRow {
	var rows []MentionRow
	for _, sc := range f.Scenes {
		start, end := sceneBounds(sc.TimestampRange)
		for _, m := range sc.ProductMentions {
			row := MentionRow{
				VideoID:     f.VideoID,
				SceneID:     sc.SceneID,
				SceneStart:  start,
				SceneEnd:    end,
				ProductName: m.ProductName,
				Brand:       m.Brand,
				Category:    m.Category,
				Confidence:  m.Confidence,
				SourceFile:  sourceFile,
			}
			if m.Evidence != nil {
				row.EvidenceVisual = m.Evidence.Visual
				row.EvidenceDialogue = m.Evidence.Dialogue
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// LoadResult counts inserted rows.
type LoadResult struct {
	Scenes   int `json:"scenes"`
	Mentions int `json:"mentions"`
}

// PrepareLoad reads every path and builds the rows to insert. Source files
// are recorded by base name.
func PrepareLoad(paths []string) ([]SceneRow, []MentionRow, error) {
	var scenes []SceneRow
	var mentions []MentionRow
	for _, p := range paths {
		f, err := ReadMentionFile(p)
		if err != nil {
			return nil, nil, err
		}
		name := filepath.Base(p)
		sr, err := BuildSceneRows(f, name)
		if err != nil {
			return nil, nil, err
		}
		scenes = append(scenes, sr...)
		mentions = append(mentions, BuildMentionRows(f, name)...)
	}
	return scenes, mentions, nil
}

// LoadMentions inserts scene and mention rows in batches of batchSize.
func (a *Analytics) LoadMentions(ctx context.Context, scenes []SceneRow, mentions []MentionRow, batchSize int) (LoadResult, error) {
	if a == nil || a.DB == nil {
		return LoadResult{}, ErrUnavailable
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	var res LoadResult

	sceneArgs := make([][]any, 0, len(scenes))
	for _, r := range scenes {
		sceneArgs = append(sceneArgs, []any{r.VideoID, r.SceneID, r.SceneStart, r.SceneEnd, r.ProductMentions, r.SourceFile})
	}
	n, err := a.insertBatches(ctx,
		`INSERT INTO video_scenes (video_id, scene_id, scene_start, scene_end, product_mentions, source_file) VALUES (?, ?, ?, ?, ?, ?)`,
		sceneArgs, batchSize)
	res.Scenes = n
	if err != nil {
		return res, fmt.Errorf("load video_scenes: %w", err)
	}

	mentionArgs := make([][]any, 0, len(mentions))
	for _, r := range mentions {
		mentionArgs = append(mentionArgs, []any{r.VideoID, r.SceneID, r.SceneStart, r.SceneEnd, r.ProductName, r.Brand,
			r.Category, r.Confidence, r.EvidenceVisual, r.EvidenceDialogue, r.SourceFile})
	}
	n, err = a.insertBatches(ctx,
		`INSERT INTO product_mentions (video_id, scene_id, scene_start, scene_end, product_name, brand, category, confidence, evidence_visual, evidence_dialogue, source_file) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mentionArgs, batchSize)
	res.Mentions = n
	if err != nil {
		return res, fmt.Errorf("load product_mentions: %w", err)
	}
	return res, nil
}

// insertBatches sends rows through clickhouse-go's prepared batch: one
// transaction per batch.
func (a *Analytics) insertBatches(ctx context.Context, stmt string, rows [][]any, batchSize int) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := a.insertBatch(ctx, stmt, rows[start:end]); err != nil {
			a.Metrics.IncrementAnalyticsErrors()
			return inserted, err
		}
		inserted += end - start
	}
	return inserted, nil
}

func (a *Analytics) insertBatch(ctx context.Context, stmt string, rows [][]any) error {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	ps, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer func(ps *sql.Stmt) {
		_ = ps.Close()
	}(ps)
	for _, args := range rows {
		if _, err := ps.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
