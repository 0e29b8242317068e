package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M00N69/NEOREVIEW/pkg/extract"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
	"github.com/M00N69/NEOREVIEW/pkg/workbook"
)

func testSession() *Session {
	return &Session{
		CompanyID:   "48455",
		CompanyName: "Fromagerie du Jura",
		Profile: schema.Profile{
			{Label: schema.CoidLabel, Value: "48455"},
			{Label: schema.SiteNameLabel, Value: "Fromagerie du Jura"},
		},
		Requirements: []schema.RequirementRecord{
			{Num: "1.1.1", UUID: "u-aaa", Score: "A"},
			{Num: "2.3.4", UUID: "u-bbb", Score: "B"},
		},
		NonConformities: []schema.RequirementRecord{
			{Num: "2.3.4", UUID: "u-bbb", Score: "B"},
		},
		Commentary: schema.NewCommentary(),
	}
}

func TestStoreCreateAssignsIdentity(t *testing.T) {
	st := NewStore()

	s := testSession()
	s.Commentary = nil
	id := st.Create(s)

	require.NotEmpty(t, id)
	assert.Equal(t, id, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.NotNil(t, s.Commentary, "Create must backfill a nil commentary")
	assert.Equal(t, 1, st.Len())
}

func TestStoreViewUnknownID(t *testing.T) {
	st := NewStore()

	err := st.View("missing", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	require.NoError(t, st.Delete(id))
	assert.Equal(t, 0, st.Len())
	assert.ErrorIs(t, st.Delete(id), ErrNotFound)
}

func TestStoreIDsOldestFirst(t *testing.T) {
	st := NewStore()

	first := st.Create(testSession())
	second := st.Create(testSession())
	third := st.Create(testSession())

	// Force distinct creation times regardless of clock granularity.
	require.NoError(t, st.Update(first, func(s *Session) error {
		s.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		return nil
	}))
	require.NoError(t, st.Update(second, func(s *Session) error {
		s.CreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		return nil
	}))
	require.NoError(t, st.Update(third, func(s *Session) error {
		s.CreatedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		return nil
	}))

	assert.Equal(t, []string{third, first, second}, st.IDs())
}

func TestSetProfileComment(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	com := schema.Comment{Reviewer: "à vérifier sur site"}
	require.NoError(t, st.SetProfileComment(id, schema.CoidLabel, com))

	err := st.View(id, func(s *Session) error {
		assert.Equal(t, com, s.Commentary.Profile[schema.CoidLabel])
		return nil
	})
	require.NoError(t, err)

	assert.ErrorIs(t, st.SetProfileComment(id, "Champ inconnu", com), ErrUnknownKey)
	assert.ErrorIs(t, st.SetProfileComment("missing", schema.CoidLabel, com), ErrNotFound)
}

func TestSetProfileCommentEmptyClears(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	require.NoError(t, st.SetProfileComment(id, schema.CoidLabel, schema.Comment{Reviewer: "note"}))
	require.NoError(t, st.SetProfileComment(id, schema.CoidLabel, schema.Comment{}))

	err := st.View(id, func(s *Session) error {
		assert.Empty(t, s.Commentary.Profile)
		return nil
	})
	require.NoError(t, err)
}

func TestSetChecklistComment(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	com := schema.Comment{Auditor: "preuve fournie lors de l'audit"}
	require.NoError(t, st.SetChecklistComment(id, "1.1.1", com))
	assert.ErrorIs(t, st.SetChecklistComment(id, "9.9.9", com), ErrUnknownKey)

	err := st.View(id, func(s *Session) error {
		assert.Equal(t, com, s.Commentary.Checklist["1.1.1"])
		return nil
	})
	require.NoError(t, err)
}

func TestSetActionComment(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	com := schema.ActionComment{
		Comment:    schema.Comment{Reviewer: "plan à détailler"},
		ActionPlan: "former l'équipe de nettoyage",
		Deadline:   "2026-06-30",
		Status:     schema.StatusInProgress,
	}
	require.NoError(t, st.SetActionComment(id, "2.3.4", com))

	err := st.View(id, func(s *Session) error {
		assert.Equal(t, com, s.Commentary.NonConformities["2.3.4"])
		return nil
	})
	require.NoError(t, err)

	// 1.1.1 is compliant, so it is not a non-conformity key.
	assert.ErrorIs(t, st.SetActionComment(id, "1.1.1", com), ErrUnknownKey)
}

func TestSetActionCommentRejectsUnknownStatus(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	com := schema.ActionComment{Status: schema.Status("Terminé")}
	err := st.SetActionComment(id, "2.3.4", com)
	assert.ErrorIs(t, err, schema.ErrInvalidStatus)
}

func TestStoreConcurrentCommentary(t *testing.T) {
	st := NewStore()
	id := st.Create(testSession())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.SetChecklistComment(id, "1.1.1", schema.Comment{Reviewer: "r"})
			_ = st.View(id, func(s *Session) error {
				_ = len(s.Commentary.Checklist)
				return nil
			})
		}()
	}
	wg.Wait()

	err := st.View(id, func(s *Session) error {
		assert.Equal(t, "r", s.Commentary.Checklist["1.1.1"].Reviewer)
		return nil
	})
	require.NoError(t, err)
}

func TestFromExtractionParameterOverride(t *testing.T) {
	ex := &extract.Extraction{
		Profile: schema.Profile{
			{Label: schema.CoidLabel, Value: "48455"},
			{Label: schema.SiteNameLabel, Value: "Fromagerie du Jura"},
		},
	}

	s := FromExtraction(ex, "", "")
	assert.Equal(t, "48455", s.CompanyID)
	assert.Equal(t, "Fromagerie du Jura", s.CompanyName)
	assert.False(t, s.Resumed)
	require.NotNil(t, s.Commentary)

	s = FromExtraction(ex, "99999", "Autre site")
	assert.Equal(t, "99999", s.CompanyID)
	assert.Equal(t, "Autre site", s.CompanyName)
}

func TestFromWorkSave(t *testing.T) {
	ws := &workbook.WorkSave{
		CompanyID:   "48455",
		CompanyName: "Fromagerie du Jura",
		Profile:     schema.Profile{{Label: schema.CoidLabel, Value: "48455"}},
		Requirements: []schema.RequirementRecord{
			{Num: "1.1.1", Score: "A"},
		},
		NonConformities: []schema.RequirementRecord{},
		Commentary:      schema.NewCommentary(),
	}
	ws.Commentary.Checklist["1.1.1"] = schema.Comment{Reviewer: "repris"}

	s := FromWorkSave(ws)
	assert.True(t, s.Resumed)
	assert.Equal(t, "48455", s.CompanyID)
	assert.Equal(t, ws.Requirements, s.Requirements)
	assert.Equal(t, "repris", s.Commentary.Checklist["1.1.1"].Reviewer)
}
