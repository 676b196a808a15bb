package matching

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/mockmatch/internal/app"
	svcErr "github.com/oggyb/mockmatch/internal/errors"
	"github.com/oggyb/mockmatch/internal/match"
)

// Matcher is the engine surface the service exposes over gRPC.
type Matcher interface {
	GetPotentialMatches(ctx context.Context, userID uint64) match.Result[[]match.CandidateView]
	Like(ctx context.Context, userID, targetID uint64) match.Result[match.LikeOutcome]
	Dislike(ctx context.Context, userID, targetID uint64) match.Result[match.DislikeOutcome]
	GetAcceptedMatches(ctx context.Context, userID uint64) match.Result[[]match.Partner]
	ListAcceptedMatches(ctx context.Context, userID uint64, pageToken string, limit int) match.Result[match.PartnerPage]
	GetDailyQuotaStatus(ctx context.Context, userID uint64) match.Result[match.QuotaStatus]
	GetAchievement(ctx context.Context, userID uint64) match.Result[match.AchievementView]
	RecordInterviewFeedback(ctx context.Context, userID, partnerID uint64, passed bool, content string) match.Result[match.AchievementView]
	GrantBonus(ctx context.Context, userID uint64, amount int) match.Result[match.QuotaStatus]
}

// Service implements the MatchService gRPC API.
// Each method decodes and validates the request struct, calls the engine
// and returns its envelope {success, code, message, data}.
//
// Outcomes the UI is expected to handle (profile incomplete, quota
// exhausted, locked match) come back as envelopes with success=false.
// Bad input and unknown users are InvalidArgument/NotFound; store
// failures are Unavailable so clients retry.
type Service struct {
	engine Matcher
	log    *slog.Logger
}

// NewMatchService creates the service from AppContext.
func NewMatchService(appCtx *app.AppContext) *Service {
	return NewService(appCtx.Engine, appCtx.Logger)
}

// NewService creates the service over any Matcher.
func NewService(engine Matcher, log *slog.Logger) *Service {
	return &Service{engine: engine, log: log}
}

// GetPotentialMatches returns today's ranked candidates.
//
// Example:
//
//	{"user_id": 42} → {"success": true, "code": "ok", "data": [{"user_id": 7, "bucket": "invited", ...}]}
func (s *Service) GetPotentialMatches(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	s.log.Debug("GetPotentialMatches called", "user", req.UserID)
	return respond(s.engine.GetPotentialMatches(ctx, req.UserID))
}

// Like records a like from user_id to target_id.
//
// Example:
//
//	{"user_id": 1, "target_id": 2} → {"success": true, "code": "ok", "data": "pending"}
func (s *Service) Like(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pairRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	s.log.Debug("Like called", "user", req.UserID, "target", req.TargetID)
	return respond(s.engine.Like(ctx, req.UserID, req.TargetID))
}

// Dislike records a dislike, or withdraws an outstanding like.
func (s *Service) Dislike(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pairRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	s.log.Debug("Dislike called", "user", req.UserID, "target", req.TargetID)
	return respond(s.engine.Dislike(ctx, req.UserID, req.TargetID))
}

func (s *Service) GetAcceptedMatches(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return respond(s.engine.GetAcceptedMatches(ctx, req.UserID))
}

// ListAcceptedMatches pages through accepted matches, newest first.
// Pass next_page_token from the previous answer as page_token.
func (s *Service) ListAcceptedMatches(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return respond(s.engine.ListAcceptedMatches(ctx, req.UserID, req.PageToken, req.Limit))
}

func (s *Service) GetDailyQuotaStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return respond(s.engine.GetDailyQuotaStatus(ctx, req.UserID))
}

func (s *Service) GetAchievement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req userRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	return respond(s.engine.GetAchievement(ctx, req.UserID))
}

// RecordInterviewFeedback stores feedback about a matched partner.
func (s *Service) RecordInterviewFeedback(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req feedbackRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	s.log.Debug("RecordInterviewFeedback called", "user", req.UserID, "partner", req.PartnerID, "passed", req.Passed)
	return respond(s.engine.RecordInterviewFeedback(ctx, req.UserID, req.PartnerID, req.Passed, req.Content))
}

// GrantBonus is the hook reward flows call to add bonus views.
func (s *Service) GrantBonus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req grantRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	s.log.Info("GrantBonus called", "user", req.UserID, "amount", req.Amount)
	return respond(s.engine.GrantBonus(ctx, req.UserID, req.Amount))
}

// respond turns an engine envelope into a response or a status error.
func respond[T any](res match.Result[T]) (*structpb.Struct, error) {
	if !res.Success {
		if res.Code == match.CodeUnavailable {
			if err := svcErr.Map(res.Err); status.Code(err) != codes.Internal {
				return nil, err
			}
			return nil, status.Error(codes.Unavailable, res.Message)
		}
		if c := svcErr.CodeOf(res.Code); c != codes.OK {
			return nil, status.Error(c, res.Message)
		}
	}
	return toStruct(res)
}
