package app

import (
	"context"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/commands"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/queries"
)

type CommandBus interface {
	UploadSummary(ctx context.Context, cmd commands.UploadSummaryCommand) (commands.UploadSummaryResult, error)
	SetPermissions(ctx context.Context, cmd commands.SetPermissionsCommand) (commands.SetPermissionsResult, error)
}

type QueryBus interface {
	GetRecord(ctx context.Context, q queries.GetRecordQuery) (queries.GetRecordResult, error)
	GetPermissions(ctx context.Context, q queries.GetPermissionsQuery) (queries.GetPermissionsResult, error)
}

type commandBus struct {
	uploadSummary  commands.UploadSummaryHandler
	setPermissions commands.SetPermissionsHandler
}

type queryBus struct {
	getRecord      queries.GetRecordQueryHandler
	getPermissions queries.GetPermissionsQueryHandler
}

func NewCommandBus(
	upload commands.UploadSummaryHandler,
	setPermissions commands.SetPermissionsHandler,
) CommandBus {
	return &commandBus{
		uploadSummary:  upload,
		setPermissions: setPermissions,
	}
}

func NewQueryBus(
	getRecord queries.GetRecordQueryHandler,
	getPermissions queries.GetPermissionsQueryHandler,
) QueryBus {
	return &queryBus{
		getRecord:      getRecord,
		getPermissions: getPermissions,
	}
}

func (b *commandBus) UploadSummary(ctx context.Context, cmd commands.UploadSummaryCommand) (commands.UploadSummaryResult, error) {
	return b.uploadSummary.Handle(ctx, cmd)
}

func (b *commandBus) SetPermissions(ctx context.Context, cmd commands.SetPermissionsCommand) (commands.SetPermissionsResult, error) {
	return b.setPermissions.Handle(ctx, cmd)
}

func (b *queryBus) GetRecord(ctx context.Context, q queries.GetRecordQuery) (queries.GetRecordResult, error) {
	return b.getRecord.Handle(ctx, q)
}

func (b *queryBus) GetPermissions(ctx context.Context, q queries.GetPermissionsQuery) (queries.GetPermissionsResult, error) {
	return b.getPermissions.Handle(ctx, q)
}
