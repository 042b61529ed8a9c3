package service

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderInvalid        = errors.New("order invalid")
	ErrOrderCreateFailed   = errors.New("order create failed")
	ErrOrderFetchFailed    = errors.New("order fetch failed")
	ErrAffiliateNotFound   = errors.New("affiliate not found")
	ErrAffiliateDisabled   = errors.New("affiliate disabled")
	ErrSelfReferral        = errors.New("self referral not allowed")
	ErrReferralExists      = errors.New("referral already attached")
	ErrReferralCodeInvalid = errors.New("referral code invalid")
)
