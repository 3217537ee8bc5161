package repo

import (
	"context"

	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
)

// AgentConfigRepository persists agent configs keyed by agent_name.
//
// Get returns (nil, nil) on a miss. Create fails with errno.ErrAlreadyExists
// when the key exists; Update fails with errno.ErrNotFound when it does not;
// Delete is idempotent.
type AgentConfigRepository interface {
	Create(ctx context.Context, config *entity.OdaAgentConfig) error
	Get(ctx context.Context, agentName string) (*entity.OdaAgentConfig, error)
	Update(ctx context.Context, config *entity.OdaAgentConfig) error
	Delete(ctx context.Context, agentName string) error
	List(ctx context.Context) ([]*entity.OdaAgentConfig, error)
}
