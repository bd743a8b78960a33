package scraper

import (
	"time"

	"github.com/go-rod/rod"
)

const (
	maxScrollPasses = 12
	maxLoadMore     = 5
	scrollSettle    = 250 * time.Millisecond
	clickSettle     = 400 * time.Millisecond
)

// interact drives the page before extraction: scroll until the document
// stops growing, click load-more style controls until they disappear,
// expand collapsed panels, then scroll again since clicks can append
// content below the fold. Every step is best-effort.
func interact(p *rod.Page) {
	scrollToEnd(p)
	clickLoadMore(p)
	expandPanels(p)
	scrollToEnd(p)
}

// scrollToEnd pages down until document height stops growing, which
// flushes lazy-loaded and infinite-scroll content.
func scrollToEnd(p *rod.Page) {
	prev := -1
	for i := 0; i < maxScrollPasses; i++ {
		res, err := p.Eval(`() => {
			window.scrollTo(0, document.body.scrollHeight);
			return document.body.scrollHeight;
		}`)
		if err != nil {
			return
		}
		h := res.Value.Int()
		if h == prev {
			return
		}
		prev = h
		time.Sleep(scrollSettle)
	}
}

var loadMoreLabels = []string{
	"load more", "show more", "view more", "see more",
	"see all", "view all", "more results", "next page",
}

// clickLoadMore clicks pagination and load-more controls until none are
// left or the round cap is hit.
func clickLoadMore(p *rod.Page) {
	for i := 0; i < maxLoadMore; i++ {
		res, err := p.Eval(`(labels) => {
			const els = document.querySelectorAll('button, a, [role="button"]');
			for (const el of els) {
				const t = (el.innerText || '').trim().toLowerCase();
				if (!t) continue;
				for (const label of labels) {
					if (t === label || t.startsWith(label)) {
						el.click();
						return true;
					}
				}
			}
			return false;
		}`, loadMoreLabels)
		if err != nil || !res.Value.Bool() {
			return
		}
		time.Sleep(clickSettle)
	}
}

// expandPanels opens accordions and collapsed sections that commonly
// hide staff listings.
func expandPanels(p *rod.Page) {
	_, _ = p.Eval(`() => {
		document.querySelectorAll('[aria-expanded="false"]').forEach(el => el.click());
		document.querySelectorAll('details:not([open])').forEach(el => { el.open = true; });
	}`)
	time.Sleep(clickSettle)
}

// tagCardCandidates marks containers whose on-screen box is card-sized
// (100-600px wide, 80-500px tall) and whose text mentions a person
// keyword or an email. The static card scan prefers tagged elements,
// which keeps whole-page wrappers and tiny labels out of the fallback.
func tagCardCandidates(p *rod.Page, personWords []string) {
	_, _ = p.Eval(`(words) => {
		const els = document.querySelectorAll('div, section, article, li');
		for (const el of els) {
			const r = el.getBoundingClientRect();
			if (r.width < 100 || r.width > 600 || r.height < 80 || r.height > 500) continue;
			const text = (el.innerText || '').toLowerCase();
			if (!text) continue;
			let hit = text.includes('@');
			if (!hit) {
				for (const w of words) {
					if (text.includes(w)) { hit = true; break; }
				}
			}
			if (hit) el.setAttribute('data-contact-card', '');
		}
	}`, personWords)
}

// removeOverlays strips fixed and sticky elements that typically belong
// to cookie banners and modal popups, which would otherwise swallow the
// load-more clicks.
func removeOverlays(p *rod.Page) {
	_, _ = p.Eval(`() => {
		const els = document.querySelectorAll('*');
		for (const el of els) {
			const style = window.getComputedStyle(el);
			const pos = style.position;
			if (pos === 'fixed' || pos === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900 || style.zIndex === 'auto') {
					el.remove();
				}
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
			'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
			'[class*="popup"]', '[id*="popup"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const style = window.getComputedStyle(el);
				if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
					el.remove();
				}
			});
		}
		document.documentElement.style.overflow = '';
		document.body.style.overflow = '';
	}`)
}
