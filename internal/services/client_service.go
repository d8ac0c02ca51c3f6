package services

import (
	"strings"
	"time"

	"dealdesk/internal/models"
	"dealdesk/internal/repositories"
)

// ClientService ведёт справочник контрагентов. Сделки ссылаются на клиента
// по id, дедупликация при создании идёт по БИН/ИИН.
type ClientService struct {
	Repo repositories.ClientRepository
}

func NewClientService(repo repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

func normalizeClient(c *models.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.BinIin = strings.TrimSpace(c.BinIin)
	if c.Name == "" {
		return ruleErr("client name is required")
	}
	return nil
}

// Create регистрирует контрагента. Если БИН указан и уже известен,
// возвращается существующая запись, created=false.
func (s *ClientService) Create(client *models.Client) (*models.Client, bool, error) {
	if err := normalizeClient(client); err != nil {
		return nil, false, err
	}
	if client.BinIin != "" {
		existing, err := s.Repo.GetByBIN(client.BinIin)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now()
	}
	id, err := s.Repo.Create(client)
	if err != nil {
		return nil, false, err
	}
	client.ID = int(id)
	return client, true, nil
}

func (s *ClientService) Update(client *models.Client) error {
	if err := normalizeClient(client); err != nil {
		return err
	}
	return s.Repo.Update(client)
}

func (s *ClientService) GetByID(id int) (*models.Client, error) {
	return s.Repo.GetByID(id)
}

func (s *ClientService) List(limit, offset int) ([]*models.Client, error) {
	if limit < 1 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(limit, offset)
}
