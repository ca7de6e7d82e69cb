package service

import "errors"

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectNotReady  = errors.New("project has no primary keywords")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrItemNotFound     = errors.New("plan item not found")
	ErrPlanNotProposal  = errors.New("plan is not a proposal")
	ErrRefreshQueueDown = errors.New("refresh queue not configured")
)
