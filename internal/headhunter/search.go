package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/vacancies"
)

type SearchParams struct {
	Text string `yaml:"text" mapstructure:"text"`
	// hhparam is custom tag for reflect. Please see buildParams.
	Areas       []int    `hhparam:"area" mapstructure:"areas"`
	OrderBy     string   `yaml:"order_by" mapstructure:"order_by"`
	Employer    uint     `yaml:"employer_id" mapstructure:"employer_id"`
	SearchField string   `yaml:"search_field" mapstructure:"search_field"`
	Schedules   []string `hhparam:"schedule" mapstructure:"schedules"`
	PerPage     string   `yaml:"per_page" mapstructure:"per_page"`
	Experience  string   `yaml:"experience" mapstructure:"experience"`
	Period      uint     `yaml:"period" mapstructure:"period"`
}

func (c *Client) search(ctx context.Context, params *SearchParams, limit int) (*Vacancies, error) {
	if params == nil {
		params = &SearchParams{}
	}

	p := *params
	// Set per_page max as possible. It should be faster.
	if p.PerPage == "" {
		p.PerPage = perPage
	}

	items, err := c.GetItems(ctx, fmt.Sprintf("%s%s", c.APIURL, SearchPath), buildParams(&p), limit)
	if err != nil {
		return nil, err
	}

	var vacancies []*Vacancy
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding vacancies: %w", err)
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

// buildParams turns SearchParams into a query. Slices become repeated keys,
// zero scalars are skipped.
func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	v := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			key = field.Tag.Get("yaml")
		}
		value := v.FieldByIndex(field.Index).Interface()

		switch typed := value.(type) {
		case []int:
			for _, item := range typed {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range typed {
				q.Add(key, item)
			}
		default:
			s := fmt.Sprintf("%v", typed)
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
