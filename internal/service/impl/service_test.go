package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blogd-net/kudos/internal/entities"
	"github.com/Blogd-net/kudos/internal/service"
	storageinterface "github.com/Blogd-net/kudos/internal/storage"
	storage "github.com/Blogd-net/kudos/internal/storage/mock"
)

const siteID = uint32(1)

var ctx = context.Background()

func expectInTx(s *storage.MockStorage) {
	s.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f func(s storageinterface.Storage) error) error {
		return f(s)
	})
}

func TestSrv_Like(t *testing.T) {
	tt := []struct {
		name       string
		storageErr error
		err        error
	}{
		{
			name: "success",
		},
		{
			name:       "already_liked",
			storageErr: storageinterface.ErrAlreadyLiked,
			err:        service.ErrAlreadyLiked,
		},
		{
			name:       "post_not_found",
			storageErr: storageinterface.ErrNotFound,
			err:        service.ErrPostNotFound,
		},
		{
			name:       "storage_error",
			storageErr: errors.New("connection reset"),
			err:        errors.New("connection reset"),
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := storage.NewMockStorage(ctrl)
			srv := New(s, siteID)

			s.EXPECT().CreateLike(gomock.Any(), uint64(5), uint64(1), gomock.Any()).Return(tc.storageErr)

			err := srv.Like(ctx, 5, 1)
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err.Error())
		})
	}
}

func TestSrv_Unlike(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	s.EXPECT().DeleteLike(gomock.Any(), uint64(5), uint64(1)).Return(nil)
	require.NoError(t, srv.Unlike(ctx, 5, 1))

	s.EXPECT().DeleteLike(gomock.Any(), uint64(5), uint64(1)).Return(storageinterface.ErrNotLiked)
	require.True(t, errors.Is(srv.Unlike(ctx, 5, 1), service.ErrNotLiked))
}

func TestSrv_Toggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	post := entities.CalculatedPost{Post: entities.Post{ID: 5, Owner: 2}}

	// not liked yet, toggle creates a like
	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(&post, nil)
	s.EXPECT().GetLikes(gomock.Any(), uint64(5), uint64(1)).Return(nil, nil)
	s.EXPECT().CreateLike(gomock.Any(), uint64(5), uint64(1), gomock.Any()).Return(nil)

	action, err := srv.Toggle(ctx, 5, 1)
	require.NoError(t, err)
	require.Equal(t, service.Liked, action)

	// liked, toggle removes the like
	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(&post, nil)
	s.EXPECT().GetLikes(gomock.Any(), uint64(5), uint64(1)).Return([]*entities.Like{
		{ID: 1, PostID: 5, UserID: 1, CreatedAt: time.Now()},
	}, nil)
	s.EXPECT().DeleteLike(gomock.Any(), uint64(5), uint64(1)).Return(nil)

	action, err = srv.Toggle(ctx, 5, 1)
	require.NoError(t, err)
	require.Equal(t, service.Unliked, action)
}

func TestSrv_Toggle_PostNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(nil, storageinterface.ErrNotFound)

	_, err := srv.Toggle(ctx, 5, 1)
	require.True(t, errors.Is(err, service.ErrPostNotFound))
}

func TestSrv_Toggle_LostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(&entities.CalculatedPost{}, nil)
	s.EXPECT().GetLikes(gomock.Any(), uint64(5), uint64(1)).Return(nil, nil)
	s.EXPECT().CreateLike(gomock.Any(), uint64(5), uint64(1), gomock.Any()).Return(storageinterface.ErrAlreadyLiked)

	_, err := srv.Toggle(ctx, 5, 1)
	require.True(t, errors.Is(err, service.ErrAlreadyLiked))
}

func TestSrv_Toggle_InvariantViolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(&entities.CalculatedPost{}, nil)
	s.EXPECT().GetLikes(gomock.Any(), uint64(5), uint64(1)).Return([]*entities.Like{
		{ID: 1, PostID: 5, UserID: 1},
		{ID: 2, PostID: 5, UserID: 1},
	}, nil)

	_, err := srv.Toggle(ctx, 5, 1)
	require.True(t, errors.Is(err, service.ErrInvariantViolated))
}

func TestSrv_CountLikesByDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)

	s.EXPECT().CountLikesByDay(gomock.Any(), from, to).Return(map[string]uint32{
		"2024-01-02": 1,
	}, nil)

	stats, err := srv.CountLikesByDay(ctx, from, to)
	require.NoError(t, err)

	require.Equal(t, []entities.DayStats{
		{Date: from, Qty: 0},
		{Date: from.AddDate(0, 0, 1), Qty: 1},
		{Date: to, Qty: 0},
	}, stats)
}

func TestSrv_CountLikesByDay_SingleDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	s.EXPECT().CountLikesByDay(gomock.Any(), day, day).Return(map[string]uint32{}, nil)

	stats, err := srv.CountLikesByDay(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, []entities.DayStats{{Date: day, Qty: 0}}, stats)
}

func TestSrv_CountLikesByDay_InvalidRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	from := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := srv.CountLikesByDay(ctx, from, to)
	require.True(t, errors.Is(err, service.ErrInvalidDateRange))
}

func TestSrv_GetUserStats(t *testing.T) {
	login := time.Unix(100, 0)
	activity := time.Unix(200, 0)

	tt := []struct {
		name        string
		user        *entities.User
		userErr     error
		activity    *time.Time
		activityErr error

		expected *entities.UserStats
		err      error
	}{
		{
			name:     "success",
			user:     &entities.User{ID: 1, LastLogin: &login},
			activity: &activity,
			expected: &entities.UserStats{LastLogin: &login, LastActivity: &activity},
		},
		{
			name:        "no_activity",
			user:        &entities.User{ID: 1, LastLogin: &login},
			activityErr: storageinterface.ErrNotFound,
			expected:    &entities.UserStats{LastLogin: &login},
		},
		{
			name:        "never_logged_in",
			user:        &entities.User{ID: 1},
			activityErr: storageinterface.ErrNotFound,
			expected:    &entities.UserStats{},
		},
		{
			name:    "user_not_found",
			userErr: storageinterface.ErrNotFound,
			err:     service.ErrUserNotFound,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := storage.NewMockStorage(ctrl)
			srv := New(s, siteID)

			s.EXPECT().GetUser(gomock.Any(), uint64(1)).Return(tc.user, tc.userErr)
			if tc.userErr == nil {
				s.EXPECT().GetLastActivity(gomock.Any(), uint64(1), siteID).Return(tc.activity, tc.activityErr)
			}

			stats, err := srv.GetUserStats(ctx, 1)
			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, stats)
		})
	}
}

func TestSrv_TrackActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := storage.NewMockStorage(ctrl)
	srv := New(s, siteID)

	now := time.Now()

	s.EXPECT().SetLastActivity(gomock.Any(), uint64(1), siteID, now).Return(nil)
	require.NoError(t, srv.TrackActivity(ctx, 1, now))

	s.EXPECT().SetLastActivity(gomock.Any(), uint64(2), siteID, now).Return(storageinterface.ErrNotFound)
	require.True(t, errors.Is(srv.TrackActivity(ctx, 2, now), service.ErrUserNotFound))
}

func TestSrv_DeletePost(t *testing.T) {
	tt := []struct {
		name    string
		post    *entities.CalculatedPost
		getErr  error
		deleted bool
		err     error
	}{
		{
			name:    "success",
			post:    &entities.CalculatedPost{Post: entities.Post{ID: 5, Owner: 1}},
			deleted: true,
		},
		{
			name: "not_owner",
			post: &entities.CalculatedPost{Post: entities.Post{ID: 5, Owner: 2}},
			err:  service.ErrNotPostOwner,
		},
		{
			name:   "not_found",
			getErr: storageinterface.ErrNotFound,
			err:    service.ErrPostNotFound,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := storage.NewMockStorage(ctrl)
			srv := New(s, siteID)

			expectInTx(s)
			s.EXPECT().GetPost(gomock.Any(), uint64(5)).Return(tc.post, tc.getErr)
			if tc.deleted {
				s.EXPECT().DeletePost(gomock.Any(), uint64(5)).Return(nil)
			}

			err := srv.DeletePost(ctx, 5, 1)
			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err))
				return
			}
			require.NoError(t, err)
		})
	}
}
