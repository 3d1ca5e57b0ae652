package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	openMeteoBaseURL = "https://api.open-meteo.com/v1"
	forecastDays     = 5
)

// CityNotFoundError is the typed outcome for a city the geocoder does not
// know. It never causes a forecast call.
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %s", e.City)
}

var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Partly cloudy",
	2:  "Cloudy",
	3:  "Overcast",
	45: "Misty",
	48: "Freezing fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Light rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Light snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Light showers",
	81: "Moderate showers",
	82: "Violent showers",
	95: "Thunderstorm",
}

type geocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	Windspeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

type dailyForecast struct {
	Time                         []string  `json:"time"`
	TemperatureMax               []float64 `json:"temperature_2m_max"`
	TemperatureMin               []float64 `json:"temperature_2m_min"`
	PrecipitationProbabilityMean []float64 `json:"precipitation_probability_mean"`
	WeatherCode                  []int     `json:"weathercode"`
}

type weatherResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
	Daily          *dailyForecast  `json:"daily"`
}

// WeatherTool resolves a city to coordinates with Nominatim, then fetches
// current conditions or a five day forecast from Open-Meteo. Geocoding hits
// are cached with a TTL so repeated questions about the same city skip the
// lookup.
type WeatherTool struct {
	geocodeURL string
	weatherURL string
	client     *http.Client
	geocodeTTL *gocache.Cache
	logger     *log.Logger
}

func NewWeatherTool(client *http.Client, logger *log.Logger) *WeatherTool {
	return &WeatherTool{
		geocodeURL: nominatimBaseURL,
		weatherURL: openMeteoBaseURL,
		client:     client,
		geocodeTTL: gocache.New(24*time.Hour, 1*time.Hour),
		logger:     logger,
	}
}

func (t *WeatherTool) Tool() Tool {
	return Tool{
		Name:        "Weather Info",
		Description: "PRIORITY 3: Get current weather or forecast for Moroccan cities",
		Priority:    3,
		Invoke:      t.Invoke,
	}
}

// Invoke reads the city name from the input. An input containing the word
// "forecast" switches to the five day forecast.
func (t *WeatherTool) Invoke(ctx context.Context, input string) Outcome {
	city := strings.TrimSpace(input)
	forecast := false
	if lower := strings.ToLower(city); strings.Contains(lower, "forecast") {
		forecast = true
		city = strings.TrimSpace(strings.NewReplacer("forecast", "", "Forecast", "").Replace(city))
	}
	if city == "" {
		return Intermediate("Please provide a city name.")
	}

	report, err := t.Report(ctx, city, forecast)
	if err != nil {
		if notFound, ok := err.(*CityNotFoundError); ok {
			return Intermediate(fmt.Sprintf("Sorry, I cannot find the city %s", notFound.City))
		}
		t.logger.Printf("[WEATHER] %v", err)
		return Intermediate(fmt.Sprintf("Error fetching weather data: %v", err))
	}
	return Intermediate(report)
}

// Report returns a formatted weather report for the city.
func (t *WeatherTool) Report(ctx context.Context, city string, forecast bool) (string, error) {
	loc, err := t.geocode(ctx, city)
	if err != nil {
		return "", err
	}

	cityName := loc.DisplayName
	if i := strings.Index(cityName, ","); i >= 0 {
		cityName = cityName[:i]
	}
	if cityName == "" {
		cityName = city
	}

	if forecast {
		return t.fetchForecast(ctx, loc, cityName)
	}
	return t.fetchCurrent(ctx, loc, cityName)
}

func (t *WeatherTool) geocode(ctx context.Context, city string) (*geocodeResult, error) {
	key := strings.ToLower(city)
	if cached, ok := t.geocodeTTL.Get(key); ok {
		return cached.(*geocodeResult), nil
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Weather Bot/1.0)")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}
	if len(results) == 0 {
		return nil, &CityNotFoundError{City: city}
	}

	loc := &results[0]
	t.geocodeTTL.Set(key, loc, gocache.DefaultExpiration)
	return loc, nil
}

func (t *WeatherTool) fetchCurrent(ctx context.Context, loc *geocodeResult, cityName string) (string, error) {
	endpoint := fmt.Sprintf("%s/forecast?latitude=%s&longitude=%s&current_weather=true&timezone=auto", t.weatherURL, loc.Lat, loc.Lon)
	data, err := t.fetchWeather(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if data.CurrentWeather == nil {
		return "", &ToolError{Tool: "Weather Info", Cause: fmt.Errorf("response has no current weather")}
	}

	desc, ok := weatherCodes[data.CurrentWeather.WeatherCode]
	if !ok {
		desc = "Unknown conditions"
	}
	return strings.Join([]string{
		fmt.Sprintf("Current weather in %s:", cityName),
		fmt.Sprintf("Temperature: %.1f°C", data.CurrentWeather.Temperature),
		fmt.Sprintf("Wind speed: %.1f km/h", data.CurrentWeather.Windspeed),
		fmt.Sprintf("Conditions: %s", desc),
	}, "\n"), nil
}

func (t *WeatherTool) fetchForecast(ctx context.Context, loc *geocodeResult, cityName string) (string, error) {
	endpoint := fmt.Sprintf("%s/forecast?latitude=%s&longitude=%s&daily=temperature_2m_max,temperature_2m_min,precipitation_probability_mean,weathercode&timezone=auto", t.weatherURL, loc.Lat, loc.Lon)
	data, err := t.fetchWeather(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if data.Daily == nil || len(data.Daily.Time) == 0 {
		return "", &ToolError{Tool: "Weather Info", Cause: fmt.Errorf("response has no daily forecast")}
	}

	lines := []string{fmt.Sprintf("Weather forecast for %s:", cityName)}
	days := forecastDays
	if len(data.Daily.Time) < days {
		days = len(data.Daily.Time)
	}
	for i := 0; i < days; i++ {
		date := data.Daily.Time[i]
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			date = parsed.Format("02/01/2006")
		}
		desc, ok := weatherCodes[data.Daily.WeatherCode[i]]
		if !ok {
			desc = "Unknown conditions"
		}
		lines = append(lines, fmt.Sprintf(
			"%s: %.1f°C to %.1f°C - %s - Precipitation probability: %.0f%%",
			date, data.Daily.TemperatureMin[i], data.Daily.TemperatureMax[i], desc, data.Daily.PrecipitationProbabilityMean[i],
		))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *WeatherTool) fetchWeather(ctx context.Context, endpoint string) (*weatherResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}

	var data weatherResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &ToolError{Tool: "Weather Info", Cause: err}
	}
	return &data, nil
}
