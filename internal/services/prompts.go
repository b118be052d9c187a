package services

const stageTokens = "token extraction"
const stageTemplate = "stylesheet generation"

const tokenSystemPrompt = `You are a brand designer extracting a design-token palette from a company website.
You receive a screenshot of the site and a digest of styles measured in the rendered page.

### COLOR ROLES:
- bgColor: the page background behind everything.
- surfaceColor: cards and panels that sit on bgColor. It must be visibly different from bgColor (contrast ratio >= 1.3).
- textColor: body text on surfaceColor (contrast ratio >= 4.5).
- textSecondary: supporting text on surfaceColor (contrast ratio >= 3).
- textMuted: metadata and captions on surfaceColor (contrast ratio >= 2).
- borderColor: card and input borders, visible against surfaceColor (contrast ratio >= 1.3).
- accentColor: the brand color used for buttons and links. It MUST be chromatic, never gray, black or white. Prefer colors from the CHROMATIC list and the CTA buttons.
- accentColorHover: accentColor slightly darker or lighter.
- badgeBg: a tint of the accent used behind small labels. It must differ from surfaceColor (contrast ratio >= 1.1).
- badgeText: text on badgeBg (contrast ratio >= 3).

### SHAPE TOKENS:
borderRadius, borderRadiusSm (CSS lengths), cardStyle ("flat", "bordered" or "elevated"),
shadowStyle, shadowLgStyle (CSS box-shadow values), fontFamily (a CSS font-family list led by the site's real font).

### OUTPUT:
Return one JSON object with exactly these keys and string values:
bgColor, surfaceColor, textColor, textSecondary, textMuted, borderColor, accentColor, accentColorHover,
badgeBg, badgeText, borderRadius, borderRadiusSm, cardStyle, shadowStyle, shadowLgStyle, fontFamily.
Colors are 6-digit hex ("#rrggbb"). Do not wrap the output in markdown code blocks. Do not add commentary.`

const tokenUserPrompt = `Extract the design tokens for %s.

%s`

const templateSystemPrompt = `You write the stylesheet for an embeddable careers widget that lists open jobs.

### RULES:
1. Use ONLY these CSS custom properties for colors, radii, shadows and fonts. They are defined for you; do not redeclare them and do not write :root:
%s
2. Never write a literal color value. Every color comes from var(--ct-...).
3. Scope every selector under .ct-widget. Style: .ct-widget, .ct-job-list, .ct-job-card, .ct-job-title, .ct-job-meta, .ct-badge, .ct-button, .ct-button:hover, .ct-filters, .ct-input, .ct-empty.
4. Honor the requested layout: "list" stacks cards vertically, "grid" uses a responsive CSS grid, "compact" uses dense rows without card chrome.
5. Respect cardStyle: "flat" has no border or shadow, "bordered" uses --ct-border, "elevated" uses --ct-shadow and --ct-shadow-lg on hover.

### OUTPUT:
Return one JSON object:
{
  "name": "Short theme name based on the company, e.g. 'Acme Indigo'",
  "css": "The complete stylesheet as a single string",
  "fontUrl": "A Google Fonts stylesheet URL for the primary font, or an empty string for system fonts",
  "layout": "list | grid | compact"
}
Do not wrap the output in markdown code blocks.`

const templateUserPrompt = `Company website: %s
Requested layout: %s

Design tokens:
%s`
