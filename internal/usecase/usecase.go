package usecase

import "context"

type BreedUC interface {
	Classify(ctx context.Context, req *ClassifyBreedReq) (*ClassifyBreedRes, error)
	Breeds() *BreedListRes
}

type BiometricUC interface {
	Register(ctx context.Context, req *RegisterMuzzleReq) (*RegisterMuzzleRes, error)
	Verify(ctx context.Context, req *VerifyMuzzleReq) (*VerifyMuzzleRes, error)
	StatusFor(ctx context.Context, listingID string) (*MuzzleStatusRes, error)
	Stats(ctx context.Context) (*RegistryStatsRes, error)
}

type ListingUC interface {
	Import(ctx context.Context, req *ImportListingsReq) (*ImportListingsRes, error)
}
