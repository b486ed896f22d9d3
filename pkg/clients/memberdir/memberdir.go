// Package memberdir reads the hall's member and employer records. The
// engine never writes these; they are maintained by the membership
// department and consumed here read-only.
package memberdir

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/unioncore/dispatch/pkg/core/model"
)

type memberRecord struct {
	ID              string   `yaml:"id"`
	Classifications []string `yaml:"classifications"`
	Agreements      []string `yaml:"agreements"`
	Active          bool     `yaml:"active"`
}

type contractRecord struct {
	Code           string `yaml:"code"`
	EffectiveDate  string `yaml:"effectiveDate"`
	ExpirationDate string `yaml:"expirationDate,omitempty"`
}

type employerRecord struct {
	ID        string           `yaml:"id"`
	Contracts []contractRecord `yaml:"contracts,omitempty"`
}

type directoryFile struct {
	Members   []memberRecord   `yaml:"members"`
	Employers []employerRecord `yaml:"employers"`
}

// Client serves member and employer contract lookups from a directory
// snapshot file.
type Client struct {
	members   map[string]model.Member
	contracts map[string]map[string]model.EmployerContract // employer -> code
	logger    *zap.Logger
}

// NewClient loads the directory snapshot at path.
func NewClient(path string, logger *zap.Logger) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}

	c := &Client{
		members:   make(map[string]model.Member, len(file.Members)),
		contracts: make(map[string]map[string]model.EmployerContract),
		logger:    logger,
	}

	for _, m := range file.Members {
		agreements := make([]model.AgreementType, 0, len(m.Agreements))
		for _, a := range m.Agreements {
			at := model.AgreementType(a)
			if !at.IsValid() {
				return nil, fmt.Errorf("member %s has unknown agreement type %q", m.ID, a)
			}
			agreements = append(agreements, at)
		}
		c.members[m.ID] = model.Member{
			ID:              m.ID,
			Classifications: m.Classifications,
			Agreements:      agreements,
			IsActive:        m.Active,
		}
	}

	for _, e := range file.Employers {
		byCode := make(map[string]model.EmployerContract, len(e.Contracts))
		for _, ct := range e.Contracts {
			byCode[ct.Code] = model.EmployerContract{
				ContractCode:   ct.Code,
				EffectiveDate:  ct.EffectiveDate,
				ExpirationDate: ct.ExpirationDate,
			}
		}
		c.contracts[e.ID] = byCode
	}

	logger.Debug("Directory snapshot loaded",
		zap.Int("members", len(c.members)),
		zap.Int("employers", len(c.contracts)))

	return c, nil
}

// GetMember returns the member record, or a NotFoundError.
func (c *Client) GetMember(ctx context.Context, id string) (*model.Member, error) {
	m, ok := c.members[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "member", Key: id}
	}
	return &m, nil
}

// GetEmployerContract returns nil when the employer holds no contract
// with the given code.
func (c *Client) GetEmployerContract(ctx context.Context, employerID, contractCode string) (*model.EmployerContract, error) {
	ct, ok := c.contracts[employerID][contractCode]
	if !ok {
		return nil, nil
	}
	return &ct, nil
}

// ContractExists reports whether any employer carries the contract code.
func (c *Client) ContractExists(ctx context.Context, contractCode string) (bool, error) {
	for _, byCode := range c.contracts {
		if _, ok := byCode[contractCode]; ok {
			return true, nil
		}
	}
	return false, nil
}
