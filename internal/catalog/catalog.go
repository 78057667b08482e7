// Package catalog lists every Google Maps Platform endpoint that gmapsprobe
// checks, in scan order.
package catalog

import (
	"net/http"

	"github.com/maxvaer/gmapsprobe/internal/probe"
	"github.com/maxvaer/gmapsprobe/internal/rule"
)

const (
	contactGoogle = "Contact Google for pricing"
	jsonType      = "application/json"
)

// PricingReferences are printed under the cost table.
var PricingReferences = []string{
	"https://cloud.google.com/maps-platform/pricing",
	"https://developers.google.com/maps/billing/gmp-billing",
}

// Markers differ between similar endpoints ("error" vs "error_message");
// each probe keeps the one that matches how its API reports a rejected key.
var (
	lacksErrorMessage = rule.Lacks("error_message")
	lacksErrorCamel   = rule.Lacks("errorMessage")
	lacksError        = rule.Lacks("error")
	ok200             = rule.Status(http.StatusOK)
	ok200NoError      = rule.All(rule.Status(http.StatusOK), rule.Lacks("error"))
)

func cost(api, price string) []probe.Cost {
	return []probe.Cost{{API: api, Price: price}}
}

func jsonPost(url, body string, fieldMask string) probe.Definition {
	h := map[string]string{"Content-Type": jsonType}
	if fieldMask != "" {
		h["X-Goog-FieldMask"] = fieldMask
	}
	return probe.Definition{
		Method:  http.MethodPost,
		URL:     url,
		Headers: h,
		Body:    body,
		Rule:    ok200NoError,
		Reason:  probe.ReasonErrorObject,
	}
}

func named(d probe.Definition, name string, costs []probe.Cost) probe.Definition {
	d.Name = name
	d.Costs = costs
	return d
}

var probes = []probe.Definition{
	{
		Name:   "Staticmap API",
		URL:    "https://maps.googleapis.com/maps/api/staticmap?center=45%2C10&zoom=7&size=400x400&key={key}",
		Rule:   ok200,
		Reason: probe.ReasonImage,
		Costs:  cost("Staticmap", "$2 per 1000 requests"),
	},
	{
		Name:   "Streetview API",
		URL:    "https://maps.googleapis.com/maps/api/streetview?size=400x400&location=40.720032,-73.988354&fov=90&heading=235&pitch=10&key={key}",
		Rule:   ok200,
		Reason: probe.ReasonImage,
		Costs:  cost("Streetview", "$7 per 1000 requests"),
	},
	{
		Name:   "Directions API",
		URL:    "https://maps.googleapis.com/maps/api/directions/json?origin=Disneyland&destination=Universal+Studios+Hollywood4&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs: []probe.Cost{
			{API: "Directions", Price: "$5 per 1000 requests"},
			{API: "Directions (Advanced)", Price: "$10 per 1000 requests"},
		},
	},
	{
		Name:   "Geocode API",
		URL:    "https://maps.googleapis.com/maps/api/geocode/json?latlng=40,30&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Geocode", "$5 per 1000 requests"),
	},
	{
		Name: "Distance Matrix API",
		URL: "https://maps.googleapis.com/maps/api/distancematrix/json?units=imperial&origins=40.6655101,-73.89188969999998" +
			"&destinations=40.6905615%2C-73.9976592%7C40.6905615%2C-73.9976592%7C40.6905615%2C-73.9976592%7C40.6905615%2C-73.9976592" +
			"%7C40.6905615%2C-73.9976592%7C40.6905615%2C-73.9976592%7C40.659569%2C-73.933783%7C40.729029%2C-73.851524" +
			"%7C40.6860072%2C-73.6334271%7C40.598566%2C-73.7527626%7C40.659569%2C-73.933783%7C40.729029%2C-73.851524" +
			"%7C40.6860072%2C-73.6334271%7C40.598566%2C-73.7527626&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs: []probe.Cost{
			{API: "Distance Matrix", Price: "$5 per 1000 elements"},
			{API: "Distance Matrix (Advanced)", Price: "$10 per 1000 elements"},
		},
	},
	{
		Name:   "Find Place From Text API",
		URL:    "https://maps.googleapis.com/maps/api/place/findplacefromtext/json?input=Museum%20of%20Contemporary%20Art%20Australia&inputtype=textquery&fields=photos,formatted_address,name,rating,opening_hours,geometry&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Find Place From Text", "$17 per 1000 elements"),
	},
	{
		Name:   "Autocomplete API",
		URL:    "https://maps.googleapis.com/maps/api/place/autocomplete/json?input=Bingh&types=%28cities%29&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs: []probe.Cost{
			{API: "Autocomplete", Price: "$2.83 per 1000 requests"},
			{API: "Autocomplete Per Session", Price: "$17 per 1000 requests"},
		},
	},
	{
		Name:   "Elevation API",
		URL:    "https://maps.googleapis.com/maps/api/elevation/json?locations=39.7391536,-104.9847034&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Elevation", "$5 per 1000 requests"),
	},
	{
		Name:   "Timezone API",
		URL:    "https://maps.googleapis.com/maps/api/timezone/json?location=39.6034810,-119.6822510&timestamp=1331161200&key={key}",
		Rule:   lacksErrorCamel,
		Reason: probe.ReasonErrorCamel,
		Costs:  cost("Timezone", "$5 per 1000 requests"),
	},
	{
		Name:   "Nearest Roads API",
		URL:    "https://roads.googleapis.com/v1/nearestRoads?points=60.170880,24.942795|60.170879,24.942796|60.170877,24.942796&key={key}",
		Rule:   lacksError,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Nearest Roads", "$10 per 1000 requests"),
	},
	{
		Name:    "Geolocation API",
		Method:  http.MethodPost,
		URL:     "https://www.googleapis.com/geolocation/v1/geolocate?key={key}",
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    "considerIp=true",
		Rule:    lacksError,
		Reason:  probe.ReasonErrorObject,
		Costs:   cost("Geolocation", "$5 per 1000 requests"),
	},
	{
		Name:   "Route to Traveled API (Snap to Roads)",
		URL:    "https://roads.googleapis.com/v1/snapToRoads?path=-35.27801,149.12958|-35.28032,149.12907&interpolate=true&key={key}",
		Rule:   lacksError,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Route to Traveled", "$10 per 1000 requests"),
	},
	{
		Name:   "Speed Limit-Roads API",
		URL:    "https://roads.googleapis.com/v1/speedLimits?path=38.75807927603043,-9.03741754643809&key={key}",
		Rule:   lacksError,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Speed Limit-Roads", "$20 per 1000 requests"),
	},
	{
		Name:   "Place Details API",
		URL:    "https://maps.googleapis.com/maps/api/place/details/json?place_id=ChIJN1t_tDeuEmsRUsoyG83frY4&fields=name,rating,formatted_phone_number&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Place Details", "$17 per 1000 requests"),
	},
	{
		Name:   "Nearby Search-Places API",
		URL:    "https://maps.googleapis.com/maps/api/place/nearbysearch/json?location=-33.8670522,151.1957362&radius=100&types=food&name=harbour&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Nearby Search-Places", "$32 per 1000 requests"),
	},
	{
		Name:   "Text Search-Places API",
		URL:    "https://maps.googleapis.com/maps/api/place/textsearch/json?query=restaurants+in+Sydney&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Text Search-Places", "$32 per 1000 requests"),
	},
	{
		Name: "Places Photo API",
		URL: "https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photoreference=" +
			"CnRtAAAATLZNl354RwP_9UKbQ_5Psy40texXePv4oAlgP4qNEkdIrkyse7rPXYGd9D_Uj1rVsQdWT4oRz4QrYAJNpFX7rzqqMlZw2h2E2y5IKMUZ7ouD_SlcHxYq1yL4KbKUv3qtWgTK0A6QbGh87GB3sscrHRIQiG2RrmU_jF4tENr9wGS_YxoUSSDrYjWmrNfeEHSGSc3FyhNLlBU" +
			"&key={key}",
		NoRedirect: true,
		Rule:       rule.Status(http.StatusFound),
		Reason:     probe.ReasonSilent,
		Costs:      cost("Places Photo", "$7 per 1000 requests"),
	},
	{
		Name:   "FCM API",
		Method: http.MethodPost,
		URL:    "https://fcm.googleapis.com/fcm/send",
		Headers: map[string]string{
			"Content-Type":  jsonType,
			"Authorization": "key={key}",
		},
		Body:   "{'registration_ids':['ABC']}",
		Rule:   ok200,
		Reason: probe.ReasonHTMLTitle,
		Costs:  cost("FCM Takeover", "https://abss.me/posts/fcm-takeover/"),
	},
	{
		Name:   "Query Autocomplete API",
		URL:    "https://maps.googleapis.com/maps/api/place/queryautocomplete/json?input=pizza+near%20Par&key={key}",
		Rule:   lacksErrorMessage,
		Reason: probe.ReasonErrorMessage,
		Costs:  cost("Query Autocomplete", "$2.83 per 1000 requests"),
	},
	named(jsonPost(
		"https://addressvalidation.googleapis.com/v1:validateAddress?key={key}",
		`{"address": {"regionCode": "US", "addressLines": ["1600 Amphitheatre Pkwy, Mountain View, CA 94043"]}}`,
		"",
	), "Address Validation API", cost("Address Validation", "$17 per 1000 requests")),
	named(jsonPost(
		"https://routes.googleapis.com/directions/v2:computeRoutes?key={key}",
		`{"origin": {"location": {"latLng": {"latitude": 37.419734, "longitude": -122.0827784}}}, "destination": {"location": {"latLng": {"latitude": 37.41767, "longitude": -122.079595}}}, "travelMode": "DRIVE"}`,
		"routes.duration,routes.distanceMeters",
	), "Routes API (v2 - Compute Routes)", cost("Routes API (Compute Routes)", "$5 per 1000 requests")),
	named(jsonPost(
		"https://routes.googleapis.com/distanceMatrix/v2:computeRouteMatrix?key={key}",
		`{"origins": [{"waypoint": {"location": {"latLng": {"latitude": 37.420761, "longitude": -122.081356}}}}], "destinations": [{"waypoint": {"location": {"latLng": {"latitude": 37.420999, "longitude": -122.086894}}}}], "travelMode": "DRIVE"}`,
		"originIndex,destinationIndex,duration,distanceMeters",
	), "Routes API (v2 - Route Matrix)", cost("Routes API (Route Matrix)", "$10 per 1000 elements")),
	named(jsonPost(
		"https://places.googleapis.com/v1/places:searchNearby?key={key}",
		`{"includedTypes": ["restaurant"], "maxResultCount": 5, "locationRestriction": {"circle": {"center": {"latitude": 37.7937, "longitude": -122.3965}, "radius": 500.0}}}`,
		"places.displayName,places.id",
	), "Places API - Nearby Search (New)", cost("Places API - Nearby Search (New)", "$32 per 1000 requests")),
	named(jsonPost(
		"https://places.googleapis.com/v1/places:searchText?key={key}",
		`{"textQuery": "Spicy Vegetarian Food in Sydney, Australia"}`,
		"places.displayName,places.formattedAddress",
	), "Places API - Text Search (New)", cost("Places API - Text Search (New)", "$32 per 1000 requests")),
	named(jsonPost(
		"https://airquality.googleapis.com/v1/currentConditions:lookup?key={key}",
		`{"location": {"latitude": 37.419734, "longitude": -122.0827784}}`,
		"",
	), "Air Quality API", cost("Air Quality API", contactGoogle)),
	{
		Name:   "Pollen API",
		URL:    "https://pollen.googleapis.com/v1/forecast:lookup?key={key}&location.latitude=37.419734&location.longitude=-122.0827784&days=1",
		Rule:   ok200NoError,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Pollen API", contactGoogle),
	},
	{
		Name:   "Solar API",
		URL:    "https://solar.googleapis.com/v1/buildingInsights:findClosest?location.latitude=37.4450&location.longitude=-122.1390&key={key}",
		Rule:   ok200NoError,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Solar API", contactGoogle),
	},
	named(jsonPost(
		"https://playablelocations.googleapis.com/v3:samplePlayableLocations?key={key}",
		`{"area_filter": {"s2_cell_id": 7715420662885515264}, "criteria": [{"gameObjectType": 1, "filter": {"maxLocationCount": 4, "includedTypes": ["food_and_drink"]}}]}`,
		"",
	), "Playable Locations API", cost("Playable Locations API", contactGoogle)),
	named(jsonPost(
		"https://aerialview.googleapis.com/v1/videos:renderVideo?key={key}",
		`{"address": "1600 Amphitheatre Parkway, Mountain View, CA 94043"}`,
		"",
	), "Aerial View API", cost("Aerial View API", contactGoogle)),
	{
		Name:   "Map Tiles API",
		URL:    "https://tile.googleapis.com/v1/2dtiles/2/2/2?session=&key={key}",
		Rule:   ok200,
		Reason: probe.ReasonErrorObject,
		Costs:  cost("Map Tiles API", "$2 per 1000 requests"),
	},
	{
		Name:       "Maps Embed API",
		URL:        "https://www.google.com/maps/embed/v1/place?key={key}&q=Space+Needle,Seattle+WA",
		NoRedirect: true,
		Rule:       rule.Status(http.StatusOK, http.StatusFound),
		Reason:     probe.ReasonRaw,
		Costs:      cost("Maps Embed API", "Free (with restrictions)"),
	},
	{
		Name:   "Maps JavaScript API",
		URL:    "https://maps.googleapis.com/maps/api/js?key={key}&callback=initMap",
		Rule:   rule.All(rule.Status(http.StatusOK), rule.Lacks("InvalidKeyMapError")),
		Reason: probe.ReasonJSMapError,
		Costs:  cost("Maps JavaScript API", "$7 per 1000 requests"),
	},
}

// All returns the probe catalog in scan order. The returned slice is a
// copy; the definitions themselves must not be modified.
func All() []probe.Definition {
	out := make([]probe.Definition, len(probes))
	copy(out, probes)
	return out
}

