package http

import (
	"github.com/pawhaven/pawhaven-tools/pawhaven"
)

// Listings come back page by page behind a nextPage cursor. The pagers
// follow that cursor, terminate once the server stops returning one, and
// refuse to request the same page number twice in a row even if the server
// echoes it back. Items are passed through as-is: a server page that
// overlaps an earlier one yields duplicates.

type PetFilter struct {
	Search   string
	Category string
}

type PetPager struct {
	client Client
	filter PetFilter
	limit  int
	next   int
	done   bool
}

const DefaultPageSize = 9

func NewPetPager(client Client, filter PetFilter, limit int) *PetPager {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	return &PetPager{client: client, filter: filter, limit: limit, next: 1}
}

func (p *PetPager) HasNext() bool {
	return !p.done
}

// Next fetches one page. It returns nil once the listing is exhausted.
func (p *PetPager) Next() ([]pawhaven.Pet, error) {
	if p.done {
		return nil, nil
	}

	requested := p.next

	page, err := p.client.ListPets(requested, p.limit, p.filter.Search, p.filter.Category)
	if err != nil {
		return nil, err
	}

	if page.NextPage == nil || *page.NextPage == requested {
		p.done = true
	} else {
		p.next = *page.NextPage
	}

	return page.Pets, nil
}

type CampaignPager struct {
	client Client
	limit  int
	next   int
	done   bool
}

func NewCampaignPager(client Client, limit int) *CampaignPager {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	return &CampaignPager{client: client, limit: limit, next: 1}
}

func (p *CampaignPager) HasNext() bool {
	return !p.done
}

func (p *CampaignPager) Next() ([]pawhaven.Campaign, error) {
	if p.done {
		return nil, nil
	}

	requested := p.next

	page, err := p.client.ListCampaigns(requested, p.limit)
	if err != nil {
		return nil, err
	}

	if page.NextPage == nil || *page.NextPage == requested {
		p.done = true
	} else {
		p.next = *page.NextPage
	}

	return page.Campaigns, nil
}
