package repo

import (
	"context"

	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
)

// ModelConfigRepository persists model configs. Implementations serialize
// operations per key and provide read-after-write within one process.
//
// Get returns (nil, nil) on a miss. Create fails with errno.ErrAlreadyExists
// when the key exists; Update fails with errno.ErrNotFound when it does not;
// Delete is idempotent.
type ModelConfigRepository interface {
	Create(ctx context.Context, config *entity.OdaModelConfig) error
	Get(ctx context.Context, modelID string) (*entity.OdaModelConfig, error)
	Update(ctx context.Context, config *entity.OdaModelConfig) error
	Delete(ctx context.Context, modelID string) error
	List(ctx context.Context) ([]*entity.OdaModelConfig, error)
}
