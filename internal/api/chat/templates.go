package chat

import (
	"fmt"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

// Pre-translated welcome copy. Guests pick a language at booking time, so
// the first message must not depend on the translation provider being up.
var welcomeTemplates = map[string]string{
	"en": "👋 Welcome %s! I'm your personal concierge at %s. Ask me about restaurants, sightseeing, shopping, nightlife, ATMs, pharmacies or rentals nearby, or say 'itinerary' and I'll plan your stay.",
	"hi": "👋 स्वागत है %s! मैं %s में आपका निजी कंसीयज हूँ। आस-पास के रेस्तरां, दर्शनीय स्थल, खरीदारी, नाइटलाइफ़, एटीएम, फार्मेसी या किराये के बारे में पूछें, या 'itinerary' कहें और मैं आपकी यात्रा की योजना बनाऊँगा।",
	"es": "👋 ¡Bienvenido %s! Soy tu conserje personal en %s. Pregúntame por restaurantes, lugares de interés, compras, vida nocturna, cajeros, farmacias o alquileres cercanos, o di 'itinerary' y planificaré tu estancia.",
	"fr": "👋 Bienvenue %s ! Je suis votre concierge personnel à %s. Demandez-moi des restaurants, des sites à visiter, du shopping, de la vie nocturne, des distributeurs, des pharmacies ou des locations à proximité, ou dites « itinerary » et je planifierai votre séjour.",
	"de": "👋 Willkommen %s! Ich bin Ihr persönlicher Concierge im %s. Fragen Sie mich nach Restaurants, Sehenswürdigkeiten, Einkaufsmöglichkeiten, Nachtleben, Geldautomaten, Apotheken oder Vermietungen in der Nähe, oder sagen Sie 'itinerary' und ich plane Ihren Aufenthalt.",
	"ja": "👋 %s様、ようこそ！%sのパーソナルコンシェルジュです。近くのレストラン、観光、ショッピング、ナイトライフ、ATM、薬局、レンタルについてお尋ねください。「itinerary」と言っていただければ滞在プランを作成します。",
	"ko": "👋 환영합니다 %s님! 저는 %s의 개인 컨시어지입니다. 근처 레스토랑, 관광, 쇼핑, 나이트라이프, ATM, 약국, 렌탈에 대해 물어보시거나 'itinerary'라고 말씀하시면 일정을 짜 드립니다.",
	"zh": "👋 欢迎 %s！我是您在 %s 的私人礼宾。您可以询问附近的餐厅、观光、购物、夜生活、ATM、药房或租赁，或者说 'itinerary'，我会为您规划行程。",
}

var helpTemplates = map[string]string{
	"en": "I can help you with:\n🍽️ restaurants\n🏛️ sightseeing\n🛍️ shopping\n🌃 nightlife\n🏧 ATMs\n💊 pharmacy\n🛵 rentals\n🗺️ itinerary planning\n\nJust tell me what you're looking for!",
	"hi": "मैं आपकी मदद कर सकता हूँ:\n🍽️ रेस्तरां\n🏛️ दर्शनीय स्थल\n🛍️ खरीदारी\n🌃 नाइटलाइफ़\n🏧 एटीएम\n💊 फार्मेसी\n🛵 किराया\n🗺️ यात्रा योजना\n\nबस बताइए आप क्या ढूंढ रहे हैं!",
	"es": "Puedo ayudarte con:\n🍽️ restaurantes\n🏛️ turismo\n🛍️ compras\n🌃 vida nocturna\n🏧 cajeros\n💊 farmacia\n🛵 alquileres\n🗺️ planificación de itinerario\n\n¡Dime qué buscas!",
	"fr": "Je peux vous aider avec :\n🍽️ restaurants\n🏛️ visites\n🛍️ shopping\n🌃 vie nocturne\n🏧 distributeurs\n💊 pharmacie\n🛵 locations\n🗺️ planification d'itinéraire\n\nDites-moi ce que vous cherchez !",
}

var categoryHeaders = map[string]map[types.Category]string{
	"en": {
		types.CategoryRestaurants: "🍽️ Here are the best places to eat near %s:",
		types.CategorySightseeing: "🏛️ Top sights near %s:",
		types.CategoryShopping:    "🛍️ Great shopping near %s:",
		types.CategoryNightlife:   "🌃 Nightlife picks near %s:",
		types.CategoryATMs:        "🏧 Closest ATMs to %s:",
		types.CategoryPharmacy:    "💊 Pharmacies near %s:",
		types.CategoryRentals:     "🛵 Rental options near %s:",
	},
	"hi": {
		types.CategoryRestaurants: "🍽️ %s के पास खाने की बेहतरीन जगहें:",
		types.CategorySightseeing: "🏛️ %s के पास प्रमुख दर्शनीय स्थल:",
		types.CategoryShopping:    "🛍️ %s के पास खरीदारी की जगहें:",
		types.CategoryNightlife:   "🌃 %s के पास नाइटलाइफ़:",
		types.CategoryATMs:        "🏧 %s के सबसे नज़दीकी एटीएम:",
		types.CategoryPharmacy:    "💊 %s के पास फार्मेसी:",
		types.CategoryRentals:     "🛵 %s के पास किराये के विकल्प:",
	},
	"es": {
		types.CategoryRestaurants: "🍽️ Los mejores lugares para comer cerca de %s:",
		types.CategorySightseeing: "🏛️ Principales lugares de interés cerca de %s:",
		types.CategoryShopping:    "🛍️ Compras cerca de %s:",
		types.CategoryNightlife:   "🌃 Vida nocturna cerca de %s:",
		types.CategoryATMs:        "🏧 Cajeros más cercanos a %s:",
		types.CategoryPharmacy:    "💊 Farmacias cerca de %s:",
		types.CategoryRentals:     "🛵 Alquileres cerca de %s:",
	},
	"fr": {
		types.CategoryRestaurants: "🍽️ Les meilleures adresses pour manger près de %s :",
		types.CategorySightseeing: "🏛️ Sites à voir près de %s :",
		types.CategoryShopping:    "🛍️ Shopping près de %s :",
		types.CategoryNightlife:   "🌃 Vie nocturne près de %s :",
		types.CategoryATMs:        "🏧 Distributeurs les plus proches de %s :",
		types.CategoryPharmacy:    "💊 Pharmacies près de %s :",
		types.CategoryRentals:     "🛵 Locations près de %s :",
	},
}

// WelcomeMessage renders the pre-translated greeting that opens every
// session. The webhook ingestion path seeds new sessions with the same
// copy, so it is exported.
func WelcomeMessage(language, guestName, hotelName string) string {
	return fmt.Sprintf(welcomeTemplate(language), firstName(guestName), hotelName)
}

// MenuMessage renders the localized category menu shown right after the
// greeting.
func MenuMessage(language string) string {
	return helpTemplate(language)
}

func welcomeTemplate(language string) string {
	if tpl, ok := welcomeTemplates[language]; ok {
		return tpl
	}
	return welcomeTemplates["en"]
}

func helpTemplate(language string) string {
	if tpl, ok := helpTemplates[language]; ok {
		return tpl
	}
	return helpTemplates["en"]
}

func categoryHeader(language string, category types.Category) string {
	if headers, ok := categoryHeaders[language]; ok {
		if tpl, ok := headers[category]; ok {
			return tpl
		}
	}
	return categoryHeaders["en"][category]
}
