package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepoSize(ctx context.Context, owner, repo string) (int, error) {
	args := m.Called(ctx, owner, repo)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchCodeSize(ctx context.Context, owner, repo string) (int, error) {
	args := m.Called(ctx, owner, repo)
	return args.Int(0), args.Error(1)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSizeBounds_Classify(t *testing.T) {
	b := SizeBounds{SmallMax: 10, MediumMax: 100}

	assert.Equal(t, "Small", b.Classify(0))
	assert.Equal(t, "Small", b.Classify(10))
	assert.Equal(t, "Medium", b.Classify(11))
	assert.Equal(t, "Medium", b.Classify(100))
	assert.Equal(t, "Large", b.Classify(101))
}

func TestSizer_Collect(t *testing.T) {
	bounds := SizeBounds{SmallMax: 1000, MediumMax: 50000}

	testCases := []struct {
		name           string
		repos          []string
		measure        string
		setup          func(f *mockFetcher)
		expectedResult []*domain.ProjectSize
		expectError    bool
	}{
		{
			name:    "happy path - disk sizes keep input order and drop duplicates",
			repos:   []string{"org/big", "org/tiny", "org/big", " org/mid "},
			measure: MeasureDisk,
			setup: func(f *mockFetcher) {
				f.On("FetchRepoSize", mock.Anything, "org", "big").Return(90000, nil).Once()
				f.On("FetchRepoSize", mock.Anything, "org", "tiny").Return(12, nil).Once()
				f.On("FetchRepoSize", mock.Anything, "org", "mid").Return(5000, nil).Once()
			},
			expectedResult: []*domain.ProjectSize{
				{Name: "org/big", Size: 90000, Category: "Large"},
				{Name: "org/tiny", Size: 12, Category: "Small"},
				{Name: "org/mid", Size: 5000, Category: "Medium"},
			},
		},
		{
			name:    "happy path - code measure uses the GraphQL fetch",
			repos:   []string{"org/a"},
			measure: MeasureCode,
			setup: func(f *mockFetcher) {
				f.On("FetchCodeSize", mock.Anything, "org", "a").Return(700, nil).Once()
			},
			expectedResult: []*domain.ProjectSize{
				{Name: "org/a", Size: 700, Category: "Small"},
			},
		},
		{
			name:    "error case - fetch fails",
			repos:   []string{"org/a"},
			measure: MeasureDisk,
			setup: func(f *mockFetcher) {
				f.On("FetchRepoSize", mock.Anything, "org", "a").Return(0, errors.New("github api error"))
			},
			expectError: true,
		},
		{
			name:        "error case - malformed repository name",
			repos:       []string{"just-a-name"},
			measure:     MeasureDisk,
			setup:       func(f *mockFetcher) {},
			expectError: true,
		},
		{
			name:        "error case - unknown measure",
			repos:       []string{"org/a"},
			measure:     "stars",
			setup:       func(f *mockFetcher) {},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			fetcher := new(mockFetcher)
			tc.setup(fetcher)
			sizer := NewSizer(fetcher, discardLogger(), 2)

			// --- Act ---
			results, err := sizer.Collect(context.Background(), tc.repos, tc.measure, bounds)

			// --- Assert ---
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, results)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedResult, results)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestSizer_Collect_RejectsInvertedBounds(t *testing.T) {
	sizer := NewSizer(new(mockFetcher), discardLogger(), 1)

	_, err := sizer.Collect(context.Background(), []string{"org/a"}, MeasureDisk, SizeBounds{SmallMax: 10, MediumMax: 5})

	assert.Error(t, err)
}
