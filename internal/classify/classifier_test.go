package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwise/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		fileNames       []string
		wantCategory    model.Category
		wantSafe        bool
		wantAutoApprove bool
	}{
		{
			name:         "system32 is excluded",
			path:         `C:\Windows\System32\drivers`,
			wantCategory: model.CategorySystemCritical,
			wantSafe:     false,
		},
		{
			name:         "program files is excluded",
			path:         `C:\Program Files\SomeApp\cache`,
			wantCategory: model.CategorySystemCritical,
			wantSafe:     false,
		},
		{
			name:         "exclusion beats temp shape",
			path:         `C:\Windows\System32\Temp`,
			wantCategory: model.CategorySystemCritical,
			wantSafe:     false,
		},
		{
			name:            "windows temp directory",
			path:            `C:\Windows\Temp`,
			wantCategory:    model.CategoryTempFiles,
			wantSafe:        true,
			wantAutoApprove: true,
		},
		{
			name:            "matching is case insensitive",
			path:            `c:\windows\temp`,
			wantCategory:    model.CategoryTempFiles,
			wantSafe:        true,
			wantAutoApprove: true,
		},
		{
			name:            "user profile temp",
			path:            `C:\Users\alice\AppData\Local\Temp`,
			wantCategory:    model.CategoryTempFiles,
			wantSafe:        true,
			wantAutoApprove: true,
		},
		{
			name:            "unix tmp",
			path:            "/tmp/build-artifacts",
			wantCategory:    model.CategoryTempFiles,
			wantSafe:        true,
			wantAutoApprove: true,
		},
		{
			// Not the anchored temp tier; falls through to the low
			// confidence generic substring tier instead.
			name:         "tmpl prefix does not match tmp",
			path:         "/tmpl",
			wantCategory: model.CategoryGenericCache,
			wantSafe:     true,
		},
		{
			name:            "chrome cache",
			path:            `C:\Users\alice\AppData\Local\Google\Chrome\User Data\Default\Cache`,
			wantCategory:    model.CategoryBrowserCache,
			wantSafe:        true,
			wantAutoApprove: true,
		},
		{
			name:         "node_modules is safe but not auto approved",
			path:         "/home/alice/projects/web/node_modules",
			wantCategory: model.CategoryDependencyTree,
			wantSafe:     true,
		},
		{
			name:         "python venv",
			path:         "/home/alice/projects/api/.venv",
			wantCategory: model.CategoryDependencyTree,
			wantSafe:     true,
		},
		{
			name:         "build output with artifact files",
			path:         "/home/alice/projects/api/target",
			fileNames:    []string{"api.so", "api.o", "notes.txt"},
			wantCategory: model.CategoryBuildOutput,
			wantSafe:     true,
		},
		{
			name:         "folder named build full of documents is not build output",
			path:         "/home/alice/documents/build",
			fileNames:    []string{"plans.pdf", "budget.xlsx", "photos.zip"},
			wantCategory: model.CategoryUnknown,
			wantSafe:     false,
		},
		{
			name:         "generic cache name",
			path:         "/home/alice/.someapp/cachedata",
			wantCategory: model.CategoryGenericCache,
			wantSafe:     true,
		},
		{
			name:         "downloads is never safe",
			path:         `C:\Users\alice\Downloads`,
			wantCategory: model.CategoryDownloads,
			wantSafe:     false,
		},
		{
			name:         "nested downloads is never safe",
			path:         "/home/alice/downloads/installers",
			wantCategory: model.CategoryDownloads,
			wantSafe:     false,
		},
		{
			name:         "unrecognized path",
			path:         "/home/alice/projects/thesis",
			wantCategory: model.CategoryUnknown,
			wantSafe:     false,
		},
	}

	classifier := NewClassifier(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := classifier.Classify(tt.path, tt.fileNames)
			assert.Equal(t, tt.wantCategory, decision.Category)
			assert.Equal(t, tt.wantSafe, decision.Safe)
			assert.Equal(t, tt.wantAutoApprove, decision.AutoApprove)
			assert.NotEmpty(t, decision.Reason)
			assert.GreaterOrEqual(t, decision.Confidence, 0.0)
			assert.LessOrEqual(t, decision.Confidence, 1.0)
		})
	}
}

func TestClassifier_RuleDBPrecedence(t *testing.T) {
	ruleDB := NewStaticRuleDB(map[string]string{
		"Steam shader cache": "steamapps/shadercache",
	})
	classifier := NewClassifier(ruleDB)

	t.Run("rule match wins over generic cache", func(t *testing.T) {
		decision := classifier.Classify(`D:\Steam\steamapps\shadercache`, nil)
		assert.Equal(t, model.CategoryKnownSafeRule, decision.Category)
		assert.True(t, decision.Safe)
		assert.True(t, decision.AutoApprove)
		assert.Equal(t, "Steam shader cache", decision.MatchedRule)
	})

	t.Run("exclusion still wins over rule", func(t *testing.T) {
		ruleDB := NewStaticRuleDB(map[string]string{
			"never ship a rule like this": "windows/system32",
		})
		classifier := NewClassifier(ruleDB)
		decision := classifier.Classify(`C:\Windows\System32`, nil)
		assert.Equal(t, model.CategorySystemCritical, decision.Category)
		assert.False(t, decision.Safe)
	})
}

func TestClassifier_DependencyConfidence(t *testing.T) {
	classifier := NewClassifier(nil)
	decision := classifier.Classify("/srv/app/node_modules", nil)
	require.Equal(t, model.CategoryDependencyTree, decision.Category)
	assert.InDelta(t, 0.85, decision.Confidence, 0.001)
	assert.False(t, decision.AutoApprove)
}

func TestSafeTier(t *testing.T) {
	assert.True(t, SafeTier(model.CategoryKnownSafeRule))
	assert.True(t, SafeTier(model.CategoryTempFiles))
	assert.True(t, SafeTier(model.CategoryBrowserCache))
	assert.False(t, SafeTier(model.CategoryDependencyTree))
	assert.False(t, SafeTier(model.CategoryBuildOutput))
	assert.False(t, SafeTier(model.CategoryDownloads))
	assert.False(t, SafeTier(model.CategoryUnknown))
}
